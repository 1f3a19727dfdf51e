package repository

import (
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Permission string

const (
	PermissionAdmin Permission = "admin"
)

type User struct {
	Id            int            `gorm:"primaryKey"`
	Email         string         `gorm:"not null;unique"`
	PasswordHash  string         `gorm:"not null"`
	Pseudo        string         `gorm:"not null"`
	ClientName    string         `gorm:"null"`
	ClientAddress string         `gorm:"null"`
	VatNumber     string         `gorm:"null"`
	Permissions   pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	OauthAccounts []*Oauth       `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Timestamps
}

func (u *User) HasPermission(permission Permission) bool {
	for _, p := range u.Permissions {
		if p == string(permission) {
			return true
		}
	}
	return false
}

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) GetUserById(userId int, preloads ...string) (*User, error) {
	var user User
	query := r.DB
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	result := query.First(&user, userId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func (r *UserRepository) GetUserByEmail(email string) (*User, error) {
	var user User
	result := r.DB.First(&user, "email = ?", email)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func (r *UserRepository) EmailExists(email string, excludeUserId int) (bool, error) {
	var count int64
	result := r.DB.Model(&User{}).Where("email = ? AND id != ?", email, excludeUserId).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (r *UserRepository) GetAllUsers(preloads ...string) ([]*User, error) {
	users := make([]*User, 0)
	query := r.DB
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	result := query.Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

func (r *UserRepository) SaveUser(user *User) (*User, error) {
	result := r.DB.Save(user)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to save user: %v", result.Error)
	}
	return user, nil
}

func (r *UserRepository) DeleteUser(userId int) error {
	result := r.DB.Delete(&User{}, userId)
	return result.Error
}

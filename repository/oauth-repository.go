package repository

import (
	"time"

	"gorm.io/gorm"
)

type Provider string

const (
	ProviderDiscord Provider = "discord"
)

type Oauth struct {
	UserId       int       `gorm:"primaryKey"`
	Provider     Provider  `gorm:"primaryKey"`
	AccessToken  string    `gorm:"not null"`
	RefreshToken string    `gorm:"null"`
	Expiry       time.Time `gorm:"not null"`
	Name         string    `gorm:"not null"`
	AccountId    string    `gorm:"not null"`

	User *User `gorm:"foreignKey:UserId"`
}

type OauthRepository struct {
	DB *gorm.DB
}

func NewOauthRepository(db *gorm.DB) *OauthRepository {
	return &OauthRepository{DB: db}
}

func (r *OauthRepository) GetOauthByProviderAndAccountId(provider Provider, accountId string) (*Oauth, error) {
	var oauth Oauth
	result := r.DB.Preload("User").First(&oauth, "provider = ? AND account_id = ?", provider, accountId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &oauth, nil
}

func (r *OauthRepository) SaveOauth(oauth *Oauth) (*Oauth, error) {
	result := r.DB.Save(oauth)
	if result.Error != nil {
		return nil, result.Error
	}
	return oauth, nil
}

func (r *OauthRepository) DeleteOauth(userId int, provider Provider) error {
	result := r.DB.Delete(&Oauth{}, "user_id = ? AND provider = ?", userId, provider)
	return result.Error
}

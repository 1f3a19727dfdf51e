package service

import (
	"fmt"
	"net/http"

	"battlescore/app_error"
	"battlescore/auth"
	"battlescore/repository"
	"battlescore/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const maxUserTextLength = 255

type UserService struct {
	userRepository  *repository.UserRepository
	oauthRepository *repository.OauthRepository
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		userRepository:  repository.NewUserRepository(db),
		oauthRepository: repository.NewOauthRepository(db),
	}
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Pseudo   string `json:"pseudo" binding:"required"`
}

func (s *UserService) Signup(request *SignupRequest) (*repository.User, error) {
	email := utils.NormalizeEmail(request.Email)
	exists, err := s.userRepository.EmailExists(email, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, app_error.New(fmt.Errorf("an account with this email already exists"), http.StatusConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &repository.User{
		Email:        email,
		PasswordHash: string(hash),
		Pseudo:       utils.SanitizeUserText(request.Pseudo, maxUserTextLength),
	}
	return s.userRepository.SaveUser(user)
}

func (s *UserService) Login(email string, password string) (*repository.User, error) {
	user, err := s.userRepository.GetUserByEmail(utils.NormalizeEmail(email))
	if err != nil {
		return nil, app_error.New(fmt.Errorf("invalid email or password"), http.StatusUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, app_error.New(fmt.Errorf("invalid email or password"), http.StatusUnauthorized)
	}
	return user, nil
}

func (s *UserService) UpdatePassword(user *repository.User, oldPassword string, newPassword string) error {
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return app_error.New(fmt.Errorf("old password does not match"), http.StatusForbidden)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	_, err = s.userRepository.SaveUser(user)
	return err
}

func (s *UserService) DeleteAccount(user *repository.User, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return app_error.New(fmt.Errorf("password does not match"), http.StatusForbidden)
	}
	return s.userRepository.DeleteUser(user.Id)
}

type UserUpdate struct {
	Email         *string `json:"email"`
	Pseudo        *string `json:"pseudo"`
	ClientName    *string `json:"client_name"`
	ClientAddress *string `json:"client_address"`
	VatNumber     *string `json:"vat_number"`
}

func (s *UserService) UpdateUser(user *repository.User, update *UserUpdate) (*repository.User, error) {
	if update.Email != nil {
		email := utils.NormalizeEmail(*update.Email)
		exists, err := s.userRepository.EmailExists(email, user.Id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, app_error.New(fmt.Errorf("an account with this email already exists"), http.StatusConflict)
		}
		user.Email = email
	}
	if update.Pseudo != nil {
		user.Pseudo = utils.SanitizeUserText(*update.Pseudo, maxUserTextLength)
	}
	if update.ClientName != nil {
		user.ClientName = utils.SanitizeUserText(*update.ClientName, maxUserTextLength)
	}
	if update.ClientAddress != nil {
		user.ClientAddress = utils.SanitizeUserText(*update.ClientAddress, maxUserTextLength)
	}
	if update.VatNumber != nil {
		user.VatNumber = utils.SanitizeUserText(*update.VatNumber, maxUserTextLength)
	}
	return s.userRepository.SaveUser(user)
}

func (s *UserService) GetUserById(userId int, preloads ...string) (*repository.User, error) {
	return s.userRepository.GetUserById(userId, preloads...)
}

func (s *UserService) GetAllUsers(preloads ...string) ([]*repository.User, error) {
	return s.userRepository.GetAllUsers(preloads...)
}

func (s *UserService) ChangePermissions(userId int, permissions []repository.Permission) (*repository.User, error) {
	user, err := s.userRepository.GetUserById(userId)
	if err != nil {
		return nil, err
	}
	user.Permissions = utils.Map(permissions, func(p repository.Permission) string { return string(p) })
	return s.userRepository.SaveUser(user)
}

func (s *UserService) GetUserFromCookie(c *gin.Context) (*repository.User, error) {
	tokenString, err := c.Cookie(auth.CookieName)
	if err != nil {
		return nil, fmt.Errorf("authentication cookie is missing")
	}
	return s.GetUserFromToken(tokenString)
}

func (s *UserService) GetUserFromToken(tokenString string) (*repository.User, error) {
	token, err := auth.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	claims := &auth.Claims{}
	if token.Valid {
		claims.FromJWTClaims(token.Claims)
		if err := claims.Valid(); err != nil {
			return nil, err
		}
		return s.GetUserById(claims.UserId, "OauthAccounts")
	}
	return nil, jwt.ErrInvalidKey
}

package controller

import (
	"strconv"
	"time"

	"battlescore/app_error"
	"battlescore/repository"
	"battlescore/service"
	"battlescore/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserController struct {
	userService *service.UserService
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{
		userService: service.NewUserService(db),
	}
}

func setupUserController(db *gorm.DB) []RouteInfo {
	e := NewUserController(db)
	routes := []RouteInfo{
		{Method: "GET", Path: "/users", HandlerFunc: e.getAllUsersHandler(), Authenticated: true, RequiredRoles: []repository.Permission{repository.PermissionAdmin}},
		{Method: "GET", Path: "/users/self", HandlerFunc: e.getSelfHandler(), Authenticated: true},
		{Method: "PATCH", Path: "/users/self", HandlerFunc: e.updateSelfHandler(), Authenticated: true},
		{Method: "GET", Path: "/users/:user_id", HandlerFunc: e.getUserByIdHandler()},
		{Method: "PATCH", Path: "/users/:user_id", HandlerFunc: e.changePermissionsHandler(), Authenticated: true, RequiredRoles: []repository.Permission{repository.PermissionAdmin}},
	}
	return routes
}

type User struct {
	Id            int        `json:"id" binding:"required"`
	Email         string     `json:"email" binding:"required"`
	Pseudo        string     `json:"pseudo" binding:"required"`
	ClientName    string     `json:"client_name"`
	ClientAddress string     `json:"client_address"`
	VatNumber     string     `json:"vat_number"`
	DiscordId     *string    `json:"discord_id"`
	DiscordName   *string    `json:"discord_name"`
	DateCreated   *time.Time `json:"date_created"`
	Permissions   []string   `json:"permissions" binding:"required"`
}

type PublicUser struct {
	Id     int    `json:"id" binding:"required"`
	Pseudo string `json:"pseudo" binding:"required"`
}

func toUserResponse(user *repository.User) *User {
	response := &User{
		Id:            user.Id,
		Email:         user.Email,
		Pseudo:        user.Pseudo,
		ClientName:    user.ClientName,
		ClientAddress: user.ClientAddress,
		VatNumber:     user.VatNumber,
		DateCreated:   &user.DateCreated,
		Permissions:   user.Permissions,
	}
	for _, oauth := range user.OauthAccounts {
		if oauth.Provider == repository.ProviderDiscord {
			response.DiscordId = &oauth.AccountId
			response.DiscordName = &oauth.Name
		}
	}
	return response
}

func toPublicUserResponse(user *repository.User) *PublicUser {
	if user == nil {
		return nil
	}
	return &PublicUser{Id: user.Id, Pseudo: user.Pseudo}
}

// @id GetAllUsers
// @Description Fetches all users
// @Tags user
// @Produce json
// @Success 200 {array} User
// @Security CookieAuth
// @Router /users [get]
func (e *UserController) getAllUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := e.userService.GetAllUsers("OauthAccounts")
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, utils.Map(users, toUserResponse))
	}
}

// @id GetSelf
// @Description Fetches the authenticated user
// @Tags user
// @Produce json
// @Success 200 {object} User
// @Security CookieAuth
// @Router /users/self [get]
func (e *UserController) getSelfHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := e.userService.GetUserById(userIdFromContext(c), "OauthAccounts")
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toUserResponse(user))
	}
}

// @id UpdateSelf
// @Description Updates the authenticated user's profile
// @Tags user
// @Accept json
// @Produce json
// @Param body body service.UserUpdate true "Profile fields"
// @Success 200 {object} User
// @Security CookieAuth
// @Router /users/self [patch]
func (e *UserController) updateSelfHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := e.userService.GetUserById(userIdFromContext(c))
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		var update service.UserUpdate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		user, err = e.userService.UpdateUser(user, &update)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toUserResponse(user))
	}
}

// @id GetUserById
// @Description Fetches a user's public profile
// @Tags user
// @Produce json
// @Param user_id path int true "User Id"
// @Success 200 {object} PublicUser
// @Router /users/{user_id} [get]
func (e *UserController) getUserByIdHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, err := strconv.Atoi(c.Param("user_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		user, err := e.userService.GetUserById(userId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toPublicUserResponse(user))
	}
}

type PermissionsUpdate struct {
	Permissions []repository.Permission `json:"permissions" binding:"required"`
}

// @id ChangePermissions
// @Description Changes the permissions of a user
// @Tags user
// @Accept json
// @Produce json
// @Param user_id path int true "User Id"
// @Param body body PermissionsUpdate true "Permissions"
// @Success 200 {object} User
// @Security CookieAuth
// @Router /users/{user_id} [patch]
func (e *UserController) changePermissionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, err := strconv.Atoi(c.Param("user_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var update PermissionsUpdate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		user, err := e.userService.ChangePermissions(userId, update.Permissions)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toUserResponse(user))
	}
}

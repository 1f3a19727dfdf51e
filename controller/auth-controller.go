package controller

import (
	"net/http"

	"battlescore/app_error"
	"battlescore/auth"
	"battlescore/config"
	"battlescore/repository"
	"battlescore/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const cookieMaxAge = 60 * 60 * 24 * 21

type AuthController struct {
	userService  *service.UserService
	oauthService *service.OauthService
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{
		userService:  service.NewUserService(db),
		oauthService: service.NewOauthService(db),
	}
}

func setupAuthController(db *gorm.DB) []RouteInfo {
	e := NewAuthController(db)
	basePath := "/auth"
	routes := []RouteInfo{
		{Method: "POST", Path: "/signup", HandlerFunc: e.signupHandler()},
		{Method: "POST", Path: "/login", HandlerFunc: e.loginHandler()},
		{Method: "POST", Path: "/logout", HandlerFunc: e.logoutHandler()},
		{Method: "POST", Path: "/password", HandlerFunc: e.updatePasswordHandler(), Authenticated: true},
		{Method: "POST", Path: "/delete-account", HandlerFunc: e.deleteAccountHandler(), Authenticated: true},
		{Method: "GET", Path: "/discord", HandlerFunc: e.discordRedirectHandler(), Authenticated: true},
		{Method: "GET", Path: "/discord/callback", HandlerFunc: e.discordCallbackHandler()},
		{Method: "POST", Path: "/discord/unlink", HandlerFunc: e.discordUnlinkHandler(), Authenticated: true},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

func (e *AuthController) setAuthCookie(c *gin.Context, user *repository.User) error {
	token, err := auth.CreateToken(user)
	if err != nil {
		return err
	}
	secure := config.IsProduction()
	c.SetCookie(auth.CookieName, token, cookieMaxAge, "/", "", secure, true)
	return nil
}

// @id Signup
// @Description Creates an account and logs the new user in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.SignupRequest true "Signup"
// @Success 201 {object} User
// @Router /auth/signup [post]
func (e *AuthController) signupHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request service.SignupRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		user, err := e.userService.Signup(&request)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		if err := e.setAuthCookie(c, user); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, toUserResponse(user))
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @id Login
// @Description Logs a user in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} User
// @Router /auth/login [post]
func (e *AuthController) loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request LoginRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		user, err := e.userService.Login(request.Email, request.Password)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		if err := e.setAuthCookie(c, user); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toUserResponse(user))
	}
}

// @id Logout
// @Description Clears the authentication cookie
// @Tags auth
// @Success 204
// @Router /auth/logout [post]
func (e *AuthController) logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(auth.CookieName, "", -1, "/", "", config.IsProduction(), true)
		c.Status(204)
	}
}

type PasswordUpdateRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// @id UpdatePassword
// @Description Changes the password of the authenticated user
// @Tags auth
// @Accept json
// @Param body body PasswordUpdateRequest true "Passwords"
// @Success 204
// @Security CookieAuth
// @Router /auth/password [post]
func (e *AuthController) updatePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := e.userService.GetUserById(userIdFromContext(c))
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		var request PasswordUpdateRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.userService.UpdatePassword(user, request.OldPassword, request.NewPassword); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Status(204)
	}
}

type DeleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// @id DeleteAccount
// @Description Deletes the authenticated user's account
// @Tags auth
// @Accept json
// @Param body body DeleteAccountRequest true "Password"
// @Success 204
// @Security CookieAuth
// @Router /auth/delete-account [post]
func (e *AuthController) deleteAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := e.userService.GetUserById(userIdFromContext(c))
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		var request DeleteAccountRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.userService.DeleteAccount(user, request.Password); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.SetCookie(auth.CookieName, "", -1, "/", "", config.IsProduction(), true)
		c.Status(204)
	}
}

// @id DiscordRedirect
// @Description Redirects to the Discord authorization page to link an account
// @Tags auth
// @Success 302
// @Security CookieAuth
// @Router /auth/discord [get]
func (e *AuthController) discordRedirectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		redirectUrl := "https://" + c.Request.Host + "/api/auth/discord/callback"
		if !config.IsProduction() {
			redirectUrl = "http://" + c.Request.Host + "/api/auth/discord/callback"
		}
		url, err := e.oauthService.GetOauthProviderUrl(userIdFromContext(c), repository.ProviderDiscord, c.Query("last_url"), redirectUrl)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Redirect(http.StatusFound, url)
	}
}

// @id DiscordCallback
// @Description Handles the Discord oauth callback and links the account
// @Tags auth
// @Success 302
// @Router /auth/discord/callback [get]
func (e *AuthController) discordCallbackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := e.oauthService.VerifyDiscord(c.Request.Context(), c.Query("state"), c.Query("code"))
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		redirect := state.Redirect
		if redirect == "" {
			redirect = "/"
		}
		c.Redirect(http.StatusFound, redirect)
	}
}

// @id DiscordUnlink
// @Description Removes the linked Discord account
// @Tags auth
// @Success 204
// @Security CookieAuth
// @Router /auth/discord/unlink [post]
func (e *AuthController) discordUnlinkHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := e.oauthService.Unlink(userIdFromContext(c), repository.ProviderDiscord); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Status(204)
	}
}

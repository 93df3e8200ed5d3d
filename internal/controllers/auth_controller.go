package controllers

import (
	"net/http"

	"redirly/internal/models"
	"redirly/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// errorStatus picks the HTTP status for a failed auth result
func errorStatus(err *models.AuthError) int {
	if err.Status >= 400 && err.Status < 600 {
		return err.Status
	}
	return http.StatusBadRequest
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "Invalid request body",
		Details: err.Error(),
	})
}

// SignIn handles POST /api/v1/auth/signin
func (ac *AuthController) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result := ac.authService.SignIn(c.Request.Context(), req.Credentials())
	if result.Error != nil {
		c.JSON(errorStatus(result.Error), result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SignUp handles POST /api/v1/auth/signup
func (ac *AuthController) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result := ac.authService.SignUp(c.Request.Context(), req.Credentials())
	if result.Error != nil {
		c.JSON(errorStatus(result.Error), result)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// OAuthLogin handles GET /api/v1/auth/oauth/:provider - redirects to the provider
func (ac *AuthController) OAuthLogin(c *gin.Context) {
	provider := models.Provider(c.Param("provider"))
	if !provider.Valid() {
		c.JSON(http.StatusBadRequest, models.StatusResult{
			Error: &models.AuthError{Message: "Invalid provider", Status: http.StatusBadRequest},
		})
		return
	}

	result := ac.authService.OAuthRedirect(c.Request.Context(), provider)
	if result.Error != nil {
		c.JSON(errorStatus(result.Error), models.StatusResult{Error: result.Error})
		return
	}

	c.Redirect(http.StatusFound, result.URL)
}

// PasswordReset handles POST /api/v1/auth/password-reset
func (ac *AuthController) PasswordReset(c *gin.Context) {
	var req models.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ac.writeStatus(c, ac.authService.PasswordReset(c.Request.Context(), models.UserCredentials{Email: req.Email}))
}

// UpdateUser handles PUT /api/v1/auth/user
func (ac *AuthController) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.Empty() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Nothing to update"})
		return
	}

	ac.writeStatus(c, ac.authService.UpdateUser(c.Request.Context(), req.Credentials()))
}

// SignOut handles POST /api/v1/auth/signout
func (ac *AuthController) SignOut(c *gin.Context) {
	ac.writeStatus(c, ac.authService.SignOut(c.Request.Context()))
}

func (ac *AuthController) writeStatus(c *gin.Context, result models.StatusResult) {
	if result.Error != nil {
		c.JSON(errorStatus(result.Error), result)
		return
	}
	c.JSON(http.StatusOK, result)
}

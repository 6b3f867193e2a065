package handlers

import (
	"errors"
	"net/http"

	"github.com/divisando/divisando-backend/internal/apperrors"
	"github.com/divisando/divisando-backend/internal/core/domain"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/divisando/divisando-backend/internal/dto"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	authService         portssvc.AuthSvcFacade
	tokenService        portssvc.TokenSvcFacade
	verificationService portssvc.VerificationSvcFacade
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService portssvc.AuthSvcFacade,
	tokenService portssvc.TokenSvcFacade,
	verificationService portssvc.VerificationSvcFacade,
) *AuthHandler {
	return &AuthHandler{
		authService:         authService,
		tokenService:        tokenService,
		verificationService: verificationService,
	}
}

// registerAuthRoutes sets up the public authentication routes.
func registerAuthRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := NewAuthHandler(services.Auth, services.Token, services.Verification)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/validate-code", h.ValidateCode)
		auth.POST("/resend-code", h.ResendCode)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/access-token", h.AccessToken)
		auth.POST("/logout", h.Logout)
	}
}

// Register godoc
// @Summary Register new user
// @Description Creates an unverified local account and emails a signup code.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "User Registration Info"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Conflict (email or username exists)"
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

// Login godoc
// @Summary User login
// @Description Authenticates credentials and opens a session.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	refreshToken, expiresAt, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Generic message on credential mismatch, nothing about which part failed.
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SessionResponse{RefreshToken: refreshToken, ExpiresAt: expiresAt})
}

// ValidateCode godoc
// @Summary Validate a verification code
// @Description Validates a signup or password-reset code. Consuming a signup code verifies the account and opens a session.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.ValidateCodeRequest true "Code submission"
// @Success 200 {object} dto.ValidateCodeResponse
// @Failure 400 {object} ErrorResponse "Invalid or expired code"
// @Failure 403 {object} ErrorResponse "Code blocked"
// @Failure 429 {object} ErrorResponse "Attempt budget exhausted"
// @Failure 500 {object} ErrorResponse
// @Router /auth/validate-code [post]
func (h *AuthHandler) ValidateCode(c *gin.Context) {
	var req dto.ValidateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := h.verificationService.ValidateCode(c.Request.Context(), req.UserID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.ValidateCodeResponse{Purpose: string(result.Purpose)}
	if result.User != nil {
		user := dto.ToUserResponse(result.User)
		resp.User = &user
	}
	if result.Purpose == domain.PurposeSignup {
		resp.RefreshToken = result.RefreshToken
		expiresAt := result.TokenExpiresAt
		resp.ExpiresAt = &expiresAt
	}
	c.JSON(http.StatusOK, resp)
}

// ResendCode godoc
// @Summary Resend signup verification code
// @Description Issues a fresh signup code when no active one exists.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.ResendCodeRequest true "Account to resend for"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "A code is still active"
// @Failure 500 {object} ErrorResponse
// @Router /auth/resend-code [post]
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req dto.ResendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.authService.ResendVerificationCode(c.Request.Context(), req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Verification code sent"})
}

// ForgotPassword godoc
// @Summary Start password reset
// @Description Emails a password-reset code to the account.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "No account with this email"
// @Failure 409 {object} ErrorResponse "A code is still active"
// @Failure 500 {object} ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Password reset code sent"})
}

// ResetPassword godoc
// @Summary Finish password reset
// @Description Consumes a valid password-reset code and overwrites the password.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.ResetPasswordRequest true "Reset submission"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Invalid or expired code"
// @Failure 403 {object} ErrorResponse "Code blocked"
// @Failure 404 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse "Attempt budget exhausted"
// @Failure 500 {object} ErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Password reset successfully"})
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Description Validates the refresh token and replaces it. The old token stops working.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest true "Current refresh token"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Invalid or expired refresh token"
// @Failure 500 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	refreshToken, expiresAt, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SessionResponse{RefreshToken: refreshToken, ExpiresAt: expiresAt})
}

// AccessToken godoc
// @Summary Trade a refresh token for an access token
// @Description Validates the refresh token and mints a short-lived access token. The refresh token is not rotated.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.AccessTokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Invalid or expired refresh token"
// @Failure 500 {object} ErrorResponse
// @Router /auth/access-token [post]
func (h *AuthHandler) AccessToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.tokenService.ValidateRefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	accessToken, expiresAt, err := h.tokenService.GenerateAccessToken(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AccessTokenResponse{AccessToken: accessToken, ExpiresAt: expiresAt})
}

// Logout godoc
// @Summary Log out
// @Description Clears the session owning the refresh token.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}

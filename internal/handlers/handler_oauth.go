package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/divisando/divisando-backend/internal/core/domain"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/divisando/divisando-backend/internal/dto"
	"github.com/divisando/divisando-backend/internal/middleware"
	"github.com/divisando/divisando-backend/internal/platform/config"
	"github.com/gin-gonic/gin"
)

const oauthStateCookie = "oauth_state"

// stateCookieMaxAge bounds how long a pending browser OAuth flow stays valid.
const stateCookieMaxAge = 600

// OAuthHandler handles the federated sign-in flows: browser redirects for
// Google and Facebook, and ID-token exchange for the mobile clients.
type OAuthHandler struct {
	cfg           *config.Config
	googleOAuth   portssvc.GoogleOAuthSvcFacade
	facebookOAuth portssvc.FacebookOAuthSvcFacade
	appleAuth     portssvc.AppleAuthSvcFacade
	authService   portssvc.AuthSvcFacade
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(cfg *config.Config, services *portssvc.ServiceContainer) *OAuthHandler {
	return &OAuthHandler{
		cfg:           cfg,
		googleOAuth:   services.GoogleOAuth,
		facebookOAuth: services.FacebookOAuth,
		appleAuth:     services.Apple,
		authService:   services.Auth,
	}
}

// registerOAuthRoutes sets up the federated sign-in routes.
func registerOAuthRoutes(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := NewOAuthHandler(cfg, services)

	oauth := rg.Group("/oauth")
	{
		oauth.GET("/google/login", h.GoogleLogin)
		oauth.GET("/google/callback", h.GoogleCallback)
		oauth.GET("/facebook/login", h.FacebookLogin)
		oauth.GET("/facebook/callback", h.FacebookCallback)
	}

	auth := rg.Group("/auth")
	{
		auth.POST("/google", h.GoogleTokenSignIn)
		auth.POST("/apple", h.AppleTokenSignIn)
	}
}

// GoogleLogin godoc
// @Summary Start Google browser sign-in
// @Description Redirects the browser to Google's consent screen.
// @Tags oauth
// @Success 307
// @Failure 500 {object} ErrorResponse
// @Router /oauth/google/login [get]
func (h *OAuthHandler) GoogleLogin(c *gin.Context) {
	state, err := h.googleOAuth.GenerateStateString(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.SetCookie(oauthStateCookie, state, stateCookieMaxAge, "/", "", h.cfg.IsProduction, true)
	c.Redirect(http.StatusTemporaryRedirect, h.googleOAuth.GetLoginURL(c.Request.Context(), state))
}

// GoogleCallback godoc
// @Summary Google browser sign-in callback
// @Description Completes the Google flow and redirects to the frontend with a session.
// @Tags oauth
// @Success 307
// @Failure 400 {object} ErrorResponse
// @Router /oauth/google/callback [get]
func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	if !h.stateMatches(c) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "OAuth state mismatch"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Authorization code missing"})
		return
	}

	token, err := h.googleOAuth.ExchangeCodeForToken(ctx, code)
	if err != nil {
		logger.Error("Google code exchange failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid or expired authorization code"})
		return
	}

	userInfo, err := h.googleOAuth.GetUserInfo(ctx, token)
	if err != nil {
		logger.Error("Google userinfo fetch failed", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}
	if userInfo.ID == "" || userInfo.Email == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Google profile is missing required fields"})
		return
	}

	h.finishBrowserFlow(c, domain.FederatedIdentity{
		Provider:   domain.ProviderGoogle,
		ProviderID: userInfo.ID,
		Email:      userInfo.Email,
		Name:       userInfo.Name,
	})
}

// FacebookLogin godoc
// @Summary Start Facebook browser sign-in
// @Description Redirects the browser to Facebook's consent screen.
// @Tags oauth
// @Success 307
// @Failure 500 {object} ErrorResponse
// @Router /oauth/facebook/login [get]
func (h *OAuthHandler) FacebookLogin(c *gin.Context) {
	state, err := h.facebookOAuth.GenerateStateString(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.SetCookie(oauthStateCookie, state, stateCookieMaxAge, "/", "", h.cfg.IsProduction, true)
	c.Redirect(http.StatusTemporaryRedirect, h.facebookOAuth.GetLoginURL(c.Request.Context(), state))
}

// FacebookCallback godoc
// @Summary Facebook browser sign-in callback
// @Description Completes the Facebook flow and redirects to the frontend with a session.
// @Tags oauth
// @Success 307
// @Failure 400 {object} ErrorResponse
// @Router /oauth/facebook/callback [get]
func (h *OAuthHandler) FacebookCallback(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	if !h.stateMatches(c) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "OAuth state mismatch"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Authorization code missing"})
		return
	}

	token, err := h.facebookOAuth.ExchangeCodeForToken(ctx, code)
	if err != nil {
		logger.Error("Facebook code exchange failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid or expired authorization code"})
		return
	}

	userInfo, err := h.facebookOAuth.GetUserInfo(ctx, token)
	if err != nil {
		logger.Error("Facebook userinfo fetch failed", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}
	if userInfo.ID == "" || userInfo.Email == "" {
		// Facebook omits the email when the user denies the permission.
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Facebook profile is missing required fields"})
		return
	}

	h.finishBrowserFlow(c, domain.FederatedIdentity{
		Provider:   domain.ProviderFacebook,
		ProviderID: userInfo.ID,
		Email:      userInfo.Email,
		Name:       userInfo.Name,
	})
}

// GoogleTokenSignIn godoc
// @Summary Google mobile sign-in
// @Description Validates a Google ID token from the mobile client and opens a session.
// @Tags oauth
// @Accept json
// @Produce json
// @Param body body dto.FederatedTokenRequest true "Google ID token"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Token failed verification"
// @Failure 409 {object} ErrorResponse "Email belongs to another account"
// @Failure 500 {object} ErrorResponse
// @Router /auth/google [post]
func (h *OAuthHandler) GoogleTokenSignIn(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.FederatedTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	payload, err := h.googleOAuth.ValidateIDToken(ctx, req.IDToken)
	if err != nil {
		respondError(c, err)
		return
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if payload.Subject == "" || email == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Essential claims missing from Google token"})
		return
	}

	h.openSession(c, domain.FederatedIdentity{
		Provider:   domain.ProviderGoogle,
		ProviderID: payload.Subject,
		Email:      email,
		Name:       name,
	})
}

// AppleTokenSignIn godoc
// @Summary Apple mobile sign-in
// @Description Validates an Apple identity token from the mobile client and opens a session.
// @Tags oauth
// @Accept json
// @Produce json
// @Param body body dto.FederatedTokenRequest true "Apple identity token"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Token failed verification"
// @Failure 409 {object} ErrorResponse "Email belongs to another account"
// @Failure 500 {object} ErrorResponse
// @Router /auth/apple [post]
func (h *OAuthHandler) AppleTokenSignIn(c *gin.Context) {
	var req dto.FederatedTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	identity, err := h.appleAuth.ValidateIDToken(c.Request.Context(), req.IDToken)
	if err != nil {
		respondError(c, err)
		return
	}

	h.openSession(c, *identity)
}

// openSession runs federated login and returns the session as JSON.
func (h *OAuthHandler) openSession(c *gin.Context, identity domain.FederatedIdentity) {
	refreshToken, expiresAt, err := h.authService.FederatedLogin(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SessionResponse{RefreshToken: refreshToken, ExpiresAt: expiresAt})
}

// finishBrowserFlow runs federated login and hands the session back to the
// frontend via redirect.
func (h *OAuthHandler) finishBrowserFlow(c *gin.Context, identity domain.FederatedIdentity) {
	refreshToken, _, err := h.authService.FederatedLogin(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	redirect := fmt.Sprintf("%s/oauth/callback?token=%s", h.cfg.FrontendBaseURL, url.QueryEscape(refreshToken))
	c.Redirect(http.StatusTemporaryRedirect, redirect)
}

// stateMatches checks the callback state against the cookie set at login and
// clears the cookie either way.
func (h *OAuthHandler) stateMatches(c *gin.Context) bool {
	cookieState, err := c.Cookie(oauthStateCookie)
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.cfg.IsProduction, true)
	if err != nil || cookieState == "" {
		return false
	}
	return c.Query("state") == cookieState
}

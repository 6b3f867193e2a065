package services

import (
	portsrepo "github.com/divisando/divisando-backend/internal/core/ports/repositories"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/divisando/divisando-backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies. The trigger is the ingestion scheduler, built by
// the caller because it sits outside the service layer.
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	mailSender portssvc.MailSender,
	trigger portssvc.RefreshTriggerSvc,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// User and token services first since the auth stack depends on them.
	container.User = NewUserService(repos.UserRepo)
	container.Token = NewTokenService(cfg, container.User)

	container.Verification = NewVerificationService(cfg, repos.VerificationCodeRepo, container.User, container.Token, mailSender)
	container.Auth = NewAuthService(container.User, container.Token, container.Verification, mailSender)

	container.Exchange = NewExchangeService(repos.ExchangeRateRepo, repos.CurrencyCatalogRepo, trigger)

	container.GoogleOAuth = NewGoogleOAuthService(cfg)
	container.FacebookOAuth = NewFacebookOAuthService(cfg)
	container.Apple = NewAppleAuthService(cfg)

	return container
}

// Compile-time interface checks.
var (
	_ portssvc.UserSvcFacade         = (*userService)(nil)
	_ portssvc.TokenSvcFacade        = (*tokenService)(nil)
	_ portssvc.AuthSvcFacade         = (*authService)(nil)
	_ portssvc.VerificationSvcFacade = (*verificationService)(nil)
	_ portssvc.ExchangeSvcFacade     = (*exchangeService)(nil)
	_ portssvc.GoogleOAuthSvcFacade  = (*googleOAuthService)(nil)
	_ portssvc.FacebookOAuthSvcFacade = (*facebookOAuthService)(nil)
	_ portssvc.AppleAuthSvcFacade    = (*appleAuthService)(nil)
)

package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and is what
// the handlers consume.
type ServiceContainer struct {
	User          UserSvcFacade
	Token         TokenSvcFacade
	Auth          AuthSvcFacade
	Verification  VerificationSvcFacade
	Exchange      ExchangeSvcFacade
	GoogleOAuth   GoogleOAuthSvcFacade
	FacebookOAuth FacebookOAuthSvcFacade
	Apple         AppleAuthSvcFacade
}

package domain

// GoogleUserInfo is the profile returned by Google's userinfo endpoint during
// the browser OAuth flow.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// FacebookUserInfo is the profile returned by the Facebook Graph API during
// the browser OAuth flow.
type FacebookUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// FederatedIdentity is the provider-verified identity extracted from either an
// OAuth profile exchange or an ID-token signature+audience check. Only data
// that passed provider verification may be carried here.
type FederatedIdentity struct {
	Provider   AuthProvider
	ProviderID string // subject at the provider
	Email      string
	Name       string
}

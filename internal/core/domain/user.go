package domain

// AuthProvider identifies where a user's credentials live.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderRemote AuthProvider = "remote"
	ProviderGoogle AuthProvider = "google"
)

// User represents an account holder. The email is the user key that scopes
// the user's ledger.
type User struct {
	Email         string       `json:"email"` // Primary Key
	Name          string       `json:"name"`
	PasswordHash  string       `json:"-"` // Empty for remote and Google accounts
	ProfilePicURL string       `json:"profilePicURL"`
	Plan          PlanName     `json:"plan"`
	AuthProvider  AuthProvider `json:"authProvider"`
	AuditFields
}

// GoogleUserInfo holds the profile returned by Google's userinfo endpoint.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

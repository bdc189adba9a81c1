package models

// User is the persisted row of an account holder.
type User struct {
	Email         string `db:"email"` // Primary Key
	Name          string `db:"name"`
	PasswordHash  string `db:"password_hash"` // Empty for externally authenticated users
	ProfilePicURL string `db:"profile_pic_url"`
	Plan          string `db:"plan"`
	AuthProvider  string `db:"auth_provider"`
	AuditFields
}

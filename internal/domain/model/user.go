package model

// User is the authenticated account as returned by the backend.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// RaterID is the identity ratings are cached under.
func (u User) RaterID() string { return u.Email }

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Username  string `json:"username" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	FullName  string `json:"full_name" validate:"max=100"`
	Phone     string `json:"phone" validate:"max=30"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Bio       string `json:"bio" validate:"max=500"`
}

// Credentials log a user in.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration creates an account.
type Registration struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name,omitempty" validate:"max=100"`
}

// AuthResult is the backend's answer to login and register.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

package server

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/cronoplan/cronoplan-api/internal/auth"
	"github.com/cronoplan/cronoplan-api/internal/profile"
)

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(&r.FullName, validation.Length(1, 200)),
		validation.Field(&r.Phone, validation.Length(0, 32)),
	)
}

// LoginRequest is the password sign-in payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// RefreshRequest carries a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// GoogleLoginRequest carries a Google ID token.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// Validate will run validation rules
func (r GoogleLoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDToken, validation.Required),
	)
}

// UpdateProfileRequest is the PUT /me payload. All fields are optional but at
// least one must be present.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
}

// Validate will run validation rules
func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Length(1, 200)),
		validation.Field(&r.AvatarURL, validation.Length(1, 2048), is.URL),
	)
}

// Changes converts the payload into a profile patch.
func (r UpdateProfileRequest) Changes() profile.Changes {
	return profile.Changes{
		FullName:  r.FullName,
		Phone:     r.Phone,
		AvatarURL: r.AvatarURL,
	}
}

// UserPayload is the profile shape returned by the API.
type UserPayload struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Phone     string     `json:"phone,omitempty"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// SessionPayload is the response for register, login, refresh, and google.
type SessionPayload struct {
	AccessToken      string      `json:"access_token"`
	RefreshToken     string      `json:"refresh_token"`
	TokenType        string      `json:"token_type"`
	ExpiresIn        int         `json:"expires_in"`
	RefreshExpiresIn int         `json:"refresh_expires_in"`
	User             UserPayload `json:"user"`
}

// VerifyPayload is the response for GET /verify.
type VerifyPayload struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
	Email   string `json:"email,omitempty"`
	Expires int64  `json:"expires_at,omitempty"`
}

func userPayload(record *profile.Profile) UserPayload {
	return UserPayload{
		ID:        record.ID.String(),
		Email:     record.Email,
		FullName:  record.FullName,
		Phone:     record.Phone,
		AvatarURL: record.AvatarURL,
		CreatedAt: record.CreatedAt,
	}
}

func sessionPayload(session *auth.AuthSession) SessionPayload {
	return SessionPayload{
		AccessToken:      session.Pair.AccessToken,
		RefreshToken:     session.Pair.RefreshToken,
		TokenType:        "bearer",
		ExpiresIn:        session.Pair.AccessExpiresIn,
		RefreshExpiresIn: session.Pair.RefreshExpiresIn,
		User:             userPayload(session.Profile),
	}
}

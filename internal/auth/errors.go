package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeTokenExpired         = "token_expired"
	textCodeTokenMalformed       = "token_malformed"
	textCodeTokenKindMismatch    = "token_kind_mismatch"
	textCodeTokenMissingSubject  = "token_missing_subject"
	textCodeMissingAuthorization = "authorization_missing"
	textCodeInvalidCredentials   = "invalid_credentials"
	textCodeAlreadyRegistered    = "already_registered"
	textCodeInvalidEmail         = "invalid_email"
	textCodeConfirmationRequired = "confirmation_required"
	textCodeProfileNotFound      = "profile_not_found"
	textCodeInvalidProviderToken = "invalid_provider_token"
)

// ErrTokenExpired is returned when a token's exp claim is in the past.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens with a bad signature or structure.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenKindMismatch is returned when the decoded type claim does not match
// the kind the caller expected (access token on refresh, or vice versa).
var ErrTokenKindMismatch = goerrors.New("unexpected token kind", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenKindMismatch).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMissingSubject is returned when a token carries no sub claim.
var ErrTokenMissingSubject = goerrors.New("token has no subject", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMissingSubject).
	WithCode(goerrors.CodeUnauthorized)

// ErrMissingAuthorization is returned when no bearer credentials were sent.
var ErrMissingAuthorization = goerrors.New("missing bearer credentials", goerrors.CategoryAuth).
	WithTextCode(textCodeMissingAuthorization).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidCredentials covers every authentication rejection from the
// identity provider. Unknown email and wrong password are intentionally not
// distinguished so the API cannot be used for account enumeration.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrAlreadyRegistered is returned when the provider reports an email collision.
var ErrAlreadyRegistered = goerrors.New("email is already registered", goerrors.CategoryValidation).
	WithTextCode(textCodeAlreadyRegistered).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidEmail is returned when the provider rejects the address format.
var ErrInvalidEmail = goerrors.New("email address is invalid", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidEmail).
	WithCode(goerrors.CodeBadRequest)

// ErrConfirmationRequired is returned when the provider created the identity
// but mandates email confirmation before the first login.
var ErrConfirmationRequired = goerrors.New("email confirmation required before login", goerrors.CategoryValidation).
	WithTextCode(textCodeConfirmationRequired).
	WithCode(goerrors.CodeBadRequest)

// ErrProfileNotFound is returned by the strict resolution path when a verified
// subject has no profile row.
var ErrProfileNotFound = goerrors.New("profile not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeProfileNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrInvalidProviderToken is returned when the external provider rejects an
// identity token handed to the OAuth login flow.
var ErrInvalidProviderToken = goerrors.New("provider token is invalid", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidProviderToken).
	WithCode(goerrors.CodeBadRequest)

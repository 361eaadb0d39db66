package content

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCreds flags a failed credential check
	TextCodeInvalidCreds = "INVALID_CREDENTIALS"
	// TextCodeEmptyPassword flags an empty password input
	TextCodeEmptyPassword = "EMPTY_PASSWORD"
	// TextCodeTokenExpired flags an expired bearer token
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed flags a token that failed signature or structural checks
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeIdentityNotFound flags a token subject with no backing account
	TextCodeIdentityNotFound = "IDENTITY_NOT_FOUND"
	// TextCodeNotAnImage flags an upload with a non image MIME type
	TextCodeNotAnImage = "NOT_AN_IMAGE"
	// TextCodeAssetTooLarge flags an upload over the configured size cap
	TextCodeAssetTooLarge = "ASSET_TOO_LARGE"
	// TextCodeInvalidAssetURL flags a malformed external asset URL
	TextCodeInvalidAssetURL = "INVALID_ASSET_URL"
	// TextCodeSigningKeyTooShort flags an unusable token signing secret
	TextCodeSigningKeyTooShort = "SIGNING_KEY_TOO_SHORT"
	// TextCodeEmailTaken flags a registration against an existing email
	TextCodeEmailTaken = "EMAIL_TAKEN"
	// TextCodeUnknownRole flags a registration against a role that does not exist
	TextCodeUnknownRole = "UNKNOWN_ROLE"
)

// ErrIdentityNotFound is returned when a verified token's subject no
// longer exists; the store, not the token, is the source of truth.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeIdentityNotFound)

// ErrMismatchedHashAndPassword collapses every credential failure into
// one caller visible signal.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrTokenExpired is the uniform expiry rejection
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed covers bad signatures and broken token structure
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrNotAnImage rejects uploads outside the image/* allowlist before
// any filesystem or database work happens.
var ErrNotAnImage = errors.New("uploaded file is not an image", errors.CategoryValidation).
	WithTextCode(TextCodeNotAnImage)

// ErrAssetTooLarge rejects uploads over the configured byte cap
var ErrAssetTooLarge = errors.New("uploaded file exceeds the maximum allowed size", errors.CategoryValidation).
	WithTextCode(TextCodeAssetTooLarge)

// ErrInvalidAssetURL rejects unparseable external image URLs
var ErrInvalidAssetURL = errors.New("external asset URL is not a valid http(s) URL", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidAssetURL)

// ErrSigningKeyTooShort is fatal at startup, never per request
var ErrSigningKeyTooShort = errors.New("token signing key is missing or too short", errors.CategoryBadInput).
	WithTextCode(TextCodeSigningKeyTooShort)

// ErrEmailTaken is returned when registering an email that already exists
var ErrEmailTaken = errors.New("email is already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken)

// ErrUnknownRole is returned when registering against a missing role
var ErrUnknownRole = errors.New("role not found", errors.CategoryValidation).
	WithTextCode(TextCodeUnknownRole)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) || hasTextCode(err, TextCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) || hasTextCode(err, TextCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// hasTextCode matches structured errors by text code so clones and
// wrapped copies of a sentinel still classify correctly.
func hasTextCode(err error, code string) bool {
	var rich *errors.Error
	return errors.As(err, &rich) && rich.TextCode == code
}

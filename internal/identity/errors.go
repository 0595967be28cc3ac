package identity

import "errors"

// AuthErrorCode classifies provider failures in a way the portals can map to
// user-facing copy without inspecting error internals.
type AuthErrorCode string

const (
	AuthErrEmailInUse        AuthErrorCode = "email-in-use"
	AuthErrInvalidEmail      AuthErrorCode = "invalid-email"
	AuthErrWeakPassword      AuthErrorCode = "weak-password"
	AuthErrUserNotFound      AuthErrorCode = "user-not-found"
	AuthErrWrongPassword     AuthErrorCode = "wrong-password"
	AuthErrInvalidCredential AuthErrorCode = "invalid-credential"
	AuthErrTooManyRequests   AuthErrorCode = "too-many-requests"
	AuthErrNetwork           AuthErrorCode = "network-request-failed"
)

const genericAuthMessage = "An unexpected error occurred. Please try again."

var friendlyMessages = map[AuthErrorCode]string{
	AuthErrEmailInUse:        "This email is already registered. Try logging in.",
	AuthErrInvalidEmail:      "Please enter a valid email address.",
	AuthErrWeakPassword:      "Password must be at least 6 characters.",
	AuthErrUserNotFound:      "No account found with this email.",
	AuthErrWrongPassword:     "Incorrect password. Please try again.",
	AuthErrInvalidCredential: "Incorrect email or password. Please try again.",
	AuthErrTooManyRequests:   "Too many attempts. Please wait a moment.",
	AuthErrNetwork:           "Network error. Check your connection.",
}

// FriendlyMessage maps a code to its user-facing string. Unmapped codes get
// the generic fallback.
func FriendlyMessage(code AuthErrorCode) string {
	if msg, ok := friendlyMessages[code]; ok {
		return msg
	}
	return genericAuthMessage
}

// AuthError carries the classification alongside the underlying failure.
type AuthError struct {
	Code AuthErrorCode
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *AuthError) Unwrap() error { return e.Err }

func newAuthError(code AuthErrorCode) *AuthError {
	return &AuthError{Code: code}
}

// CodeOf extracts the AuthErrorCode from err, or "" when it is not an auth
// failure.
func CodeOf(err error) AuthErrorCode {
	var typed *AuthError
	if errors.As(err, &typed) {
		return typed.Code
	}
	return ""
}

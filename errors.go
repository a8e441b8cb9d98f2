package milcubes

import "errors"

// Errors for session establishment.
var (
	// ErrNoRedirectToken is returned when the admin auth endpoint does not
	// answer with a redirect carrying a bearer token.
	ErrNoRedirectToken = errors.New("auth redirect carried no token")
	// ErrNoCSRFToken is returned when the landing page does not embed a CSRF token.
	ErrNoCSRFToken = errors.New("csrf token not found in page")
	// ErrLoginRejected is returned when the login endpoint does not answer with a redirect.
	ErrLoginRejected = errors.New("login rejected")
	// ErrNoLoginMethod is returned when neither cookies nor credentials are configured.
	ErrNoLoginMethod = errors.New("no login method configured")
)

// Errors for collection lookups and bulk operations.
var (
	// ErrProjectNotFound is returned when no project matches the lookup.
	ErrProjectNotFound = errors.New("project not found")
	// ErrSessionRequired is returned when a bulk operation needs a bound session.
	ErrSessionRequired = errors.New("collection has no session")
)

// ErrMissingEnvelope is returned when a successful platform response lacks
// the "data" envelope key.
var ErrMissingEnvelope = errors.New("response has no data envelope")

// AuthError wraps a failure in one of the login flows.
type AuthError struct {
	Flow string // "cookies", "cookies-json", or "credentials"
	Err  error
}

func (e *AuthError) Error() string {
	return "login via " + e.Flow + ": " + e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

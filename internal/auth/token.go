// Package auth defines the caller-identity contract used by the rewriting
// and proxy layers, including the anonymous variant used when no
// authentication is present.
package auth

import "errors"

// ErrActiveURLUnsupported is returned when a token kind has no notion of
// an active URL. Callers must be able to tell "not applicable" apart from
// "empty value".
var ErrActiveURLUnsupported = errors.New("auth: active URL not supported for this token")

// AuthenticationMode identifies how a token was established.
type AuthenticationMode string

const (
	ModeUnauthenticated    AuthenticationMode = "UNAUTHENTICATED"
	ModeSecurityTokenParam AuthenticationMode = "SECURITY_TOKEN_URL_PARAMETER"
)

// Token carries the identity of the caller a document is being rewritten for.
type Token interface {
	// IsAnonymous reports whether the token carries no authenticated identity.
	IsAnonymous() bool
	// OwnerID returns the owner identifier ("-1" for anonymous tokens).
	OwnerID() string
	// ViewerID returns the viewer identifier ("-1" for anonymous tokens).
	ViewerID() string
	// AppID returns the application identifier.
	AppID() string
	// AppURL returns the application URL.
	AppURL() string
	// ModuleID returns the numeric module instance identifier.
	ModuleID() int64
	// Container returns the container the token was issued for.
	Container() string
	// Domain returns the domain the token is valid in.
	Domain() string
	// AuthenticationMode reports how the token was established.
	AuthenticationMode() AuthenticationMode
	// SerialForm returns the wire form of the token.
	SerialForm() string
	// ActiveURL returns the URL the token is active for, or
	// ErrActiveURLUnsupported when the token kind has none.
	ActiveURL() (string, error)
}

// DefaultContainer is the container used when none is specified.
const DefaultContainer = "default"

// AnonymousToken represents the anonymous viewer/owner.
type AnonymousToken struct {
	container string
	moduleID  int64
	appURL    string
}

// NewAnonymousToken creates an anonymous token for the default container.
func NewAnonymousToken() *AnonymousToken {
	return NewAnonymousTokenFor(DefaultContainer, 0, "")
}

// NewAnonymousTokenFor creates an anonymous token for a container,
// module instance, and application URL.
func NewAnonymousTokenFor(container string, moduleID int64, appURL string) *AnonymousToken {
	return &AnonymousToken{
		container: container,
		moduleID:  moduleID,
		appURL:    appURL,
	}
}

func (t *AnonymousToken) IsAnonymous() bool { return true }

func (t *AnonymousToken) OwnerID() string { return "-1" }

func (t *AnonymousToken) ViewerID() string { return "-1" }

func (t *AnonymousToken) AppID() string { return t.appURL }

func (t *AnonymousToken) AppURL() string { return t.appURL }

func (t *AnonymousToken) ModuleID() int64 { return t.moduleID }

func (t *AnonymousToken) Container() string { return t.container }

func (t *AnonymousToken) Domain() string { return "none" }

func (t *AnonymousToken) AuthenticationMode() AuthenticationMode {
	return ModeUnauthenticated
}

// SerialForm is empty: anonymous tokens have no wire representation.
func (t *AnonymousToken) SerialForm() string { return "" }

// ActiveURL fails: no active URL exists for anonymous identities.
func (t *AnonymousToken) ActiveURL() (string, error) {
	return "", ErrActiveURLUnsupported
}

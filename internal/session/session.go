// Package session holds the client-side session: who is signed in, the
// token used for API calls and the display theme. A State is an explicit
// value passed to whatever needs it; there is no package-level current user.
package session

import (
	"strings"

	"github.com/isdelr/placeit-be/internal/models"
)

// Theme is the display preference.
type Theme string

// Themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Provider names the path an identity came from.
type Provider string

// Providers.
const (
	ProviderPassword         Provider = "password"
	ProviderIdentityProvider Provider = "identity-provider"
)

// Paths used by the gate.
const (
	RootPath = "/"
	HomePath = "/home"
)

// ProtectedPaths lists the views that need a signed-in user.
var ProtectedPaths = []string{HomePath}

// Identity is the single representation of a signed-in user, whichever way
// they signed in.
type Identity struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Provider Provider `json:"provider"`
}

// State is the client session.
type State struct {
	User  *Identity `json:"user,omitempty"`
	Token string    `json:"token,omitempty"`
	Theme Theme     `json:"theme,omitempty"`
}

// SignInWithPassword records a password login: the token returned by the
// server and the user it was issued for.
func (s *State) SignInWithPassword(token string, user models.PublicUser) {
	s.Token = token
	s.User = &Identity{ID: user.ID, Email: user.Email, Provider: ProviderPassword}
}

// SignInWithProvider records an identity established by a third-party
// provider. Any password token from an earlier sign-in is dropped so the
// state never mixes two identities.
func (s *State) SignInWithProvider(id Identity) {
	id.Provider = ProviderIdentityProvider
	s.Token = ""
	s.User = &id
}

// SignOut clears the identity and the token. The theme survives.
func (s *State) SignOut() {
	s.User = nil
	s.Token = ""
}

// Authenticated reports whether a protected view may be shown: either a
// provider identity or a stored token is enough.
func (s State) Authenticated() bool {
	if s.Token != "" {
		return true
	}
	return s.User != nil && s.User.Provider == ProviderIdentityProvider
}

// Gate returns where a request for path should go instead, or "" when it
// may proceed.
func (s State) Gate(path string) string {
	if !IsProtected(path) || s.Authenticated() {
		return ""
	}
	return RootPath
}

// IsProtected reports whether path needs a signed-in user.
func IsProtected(path string) bool {
	path = strings.TrimRight(path, "/")
	for _, p := range ProtectedPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// CurrentTheme returns the theme, defaulting to light.
func (s State) CurrentTheme() Theme {
	if s.Theme == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *State) ToggleTheme() Theme {
	if s.CurrentTheme() == ThemeDark {
		s.Theme = ThemeLight
	} else {
		s.Theme = ThemeDark
	}
	return s.Theme
}

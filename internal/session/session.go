// Package session holds the explicit authentication context shared by every
// controller. There is exactly one credential pair at a time; invalidating it
// resets all dependent state through registered hooks.
package session

import (
	"encoding/base64"
	"sync"

	"expenseportal/internal/model"
)

// Session is the single shared credential/profile holder. All methods are
// safe for concurrent use; backend calls read the credential at dispatch
// time, so a logout takes effect for every call issued afterwards.
type Session struct {
	mu      sync.RWMutex
	usuario string
	basic   string
	profile *model.Profile
	hooks   []func()
}

func New() *Session {
	return &Session{}
}

// SetCredentials stores the credential pair as the Basic token sent on every
// request.
func (s *Session) SetCredentials(usuario, password string) {
	token := base64.StdEncoding.EncodeToString([]byte(usuario + ":" + password))
	s.mu.Lock()
	s.usuario = usuario
	s.basic = token
	s.mu.Unlock()
}

// Basic returns the current Basic token, empty when logged out.
func (s *Session) Basic() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.basic
}

// Usuario returns the login the credentials were stored under.
func (s *Session) Usuario() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usuario
}

// Authenticated reports whether a credential pair is present.
func (s *Session) Authenticated() bool {
	return s.Basic() != ""
}

func (s *Session) SetProfile(p *model.Profile) {
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
}

// Profile returns the cached profile, nil before the login probe resolves.
func (s *Session) Profile() *model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// OnInvalidate registers a reset hook run whenever the session is
// invalidated. Controllers register their reset here so a forced logout
// returns every piece of dependent state to its initial shape.
func (s *Session) OnInvalidate(hook func()) {
	s.mu.Lock()
	s.hooks = append(s.hooks, hook)
	s.mu.Unlock()
}

// Invalidate clears the credentials and profile and runs the reset hooks.
// It is the single transition out of the authenticated state, used by both
// explicit logout and a failed profile refetch.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.usuario = ""
	s.basic = ""
	s.profile = nil
	hooks := make([]func(), len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

package turtle

import (
	"errors"
	"regexp"
	"strings"
	"sync"
)

// ErrNoPriorSession is returned by Rejoin before any successful Join.
var ErrNoPriorSession = errors.New("no collaboration session has been joined yet")

// Session links have the shape [/scout]/<session>/<password>[/]. The
// optional /scout prefix is stripped before matching so a password-less
// link like /scout/abc123 cannot pass with "scout" read as the session.
var linkPattern = regexp.MustCompile(`^/(?P<session>[^/\s]+)/(?P<password>[^/\s]+)/?$`)

// Session tracks membership in one remote collaboration room. Leave keeps
// the stored credentials so Rejoin can resume the same room later; only the
// active flag changes. One mutex guards all three fields so a reader can
// never observe a torn slug/password pair.
type Session struct {
	mu       sync.Mutex
	slug     string
	password string
	active   bool
}

// Join parses link and, on a match, stores its credentials and activates the
// session. A non-matching link leaves existing state untouched.
func (s *Session) Join(link string) (slug, password string, ok bool) {
	trimmed := strings.TrimSpace(link)
	if rest, found := strings.CutPrefix(trimmed, "/scout/"); found {
		trimmed = "/" + rest
	}
	m := linkPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return "", "", false
	}
	slug, password = m[1], m[2]

	s.mu.Lock()
	defer s.mu.Unlock()
	s.slug = slug
	s.password = password
	s.active = true
	return slug, password, true
}

// Rejoin re-activates the session using the last stored credentials.
func (s *Session) Rejoin() (slug, password string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slug == "" || s.password == "" {
		return "", "", ErrNoPriorSession
	}
	s.active = true
	return s.slug, s.password, nil
}

// Leave suspends remote updates without discarding credentials. Idempotent.
func (s *Session) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Credentials returns a consistent snapshot of the session state.
func (s *Session) Credentials() (slug, password string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slug, s.password, s.active
}

package metadatastore

import "time"

// RegisterUser adds username to the append-only user registry if it is not
// already present. It is idempotent: registering an existing user is a
// no-op, matching "a user is registered on first successful login and
// persists" (spec.md §3).
func (s *Store) RegisterUser(username string) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	if _, exists := s.users[username]; !exists {
		s.users[username] = &UserRecord{Username: username, RegisteredAt: time.Now()}
	}
}

// UserExists reports whether username has ever registered.
func (s *Store) UserExists(username string) bool {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	_, ok := s.users[username]
	return ok
}

// BeginSession records username as having an active session, enforcing the
// single-session-per-username invariant (spec.md §3, §8 invariant 4). It
// also registers the user if this is their first login.
func (s *Store) BeginSession(username string) error {
	s.usersMu.Lock()
	if _, exists := s.users[username]; !exists {
		s.users[username] = &UserRecord{Username: username, RegisteredAt: time.Now()}
	}
	s.usersMu.Unlock()

	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if _, active := s.sessions[username]; active {
		return ErrSessionExists
	}
	s.sessions[username] = time.Now()
	return nil
}

// EndSession removes username's active-session entry, e.g. on client
// disconnect. It is safe to call for a username with no active session.
func (s *Store) EndSession(username string) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	delete(s.sessions, username)
}

// SessionHolder returns when username's active session began, and whether
// one exists, used to report the "pre-existing session"
// description on a REGISTER_CLIENT rejection (spec.md §4.2).
func (s *Store) SessionHolder(username string) (time.Time, bool) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	t, ok := s.sessions[username]
	return t, ok
}

package session

import (
	"encoding/json"
	"sync"

	"github.com/eshaffer321/therapist-go/internal/types"
	"github.com/pkg/errors"
)

// Store is the single in-memory copy of the session, mirrored to a Persister
// after every mutation.
type Store struct {
	mu        sync.RWMutex
	session   types.Session
	persister Persister
	logger    types.Logger

	// notifyMu orders delivery: it is held from the state change until
	// every subscriber has returned.
	notifyMu sync.Mutex
	subMu    sync.Mutex
	subs     map[int]func(types.Session)
	nextID   int
}

// New creates a store and restores the last persisted session from p.
// A nil persister keeps the session in memory only.
func New(p Persister, logger types.Logger) *Store {
	s := &Store{
		persister: p,
		logger:    logger,
	}
	if p == nil {
		return s
	}

	data, err := p.Load(types.StorageKey)
	if err != nil {
		if !errors.Is(err, ErrSlotNotFound) && logger != nil {
			logger.Error("Failed to read persisted session", "error", err)
		}
		return s
	}

	s.session = Restore(data, logger)
	if logger != nil {
		logger.Debug("Session restored", "loggedIn", s.session.IsLoggedIn)
	}
	return s
}

// Encode serializes a session for storage
func Encode(sess types.Session) ([]byte, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal session")
	}
	return data, nil
}

// Decode parses a stored session
func Decode(data []byte) (types.Session, error) {
	var sess types.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return types.Session{}, errors.Wrap(err, "failed to unmarshal session")
	}
	return sess, nil
}

// Restore decodes data, falling back to the empty session when it is corrupt
func Restore(data []byte, logger types.Logger) types.Session {
	sess, err := Decode(data)
	if err != nil {
		if logger != nil {
			logger.Error("Discarding corrupt session", "error", err)
		}
		return types.Session{}
	}
	return sess
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() types.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneSession(s.session)
}

// AccessToken returns the current access token
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken
}

// RefreshToken returns the current refresh token
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.RefreshToken
}

// SetToken overwrites the access token
func (s *Store) SetToken(token string) {
	s.mutate(func(sess *types.Session) {
		sess.AccessToken = token
	})
}

// SetRefreshToken overwrites the refresh token
func (s *Store) SetRefreshToken(token string) {
	s.mutate(func(sess *types.Session) {
		sess.RefreshToken = token
	})
}

// SetUserData replaces the user profile and marks the session logged in
func (s *Store) SetUserData(user types.UserData) {
	s.mutate(func(sess *types.Session) {
		sess.UserData = user.Clone()
		sess.IsLoggedIn = true
	})
}

// UpdateUserData shallow-merges partial into the user profile. Keys not in
// partial are left alone and IsLoggedIn is not touched.
func (s *Store) UpdateUserData(partial types.UserData) {
	s.mutate(func(sess *types.Session) {
		if sess.UserData == nil {
			sess.UserData = make(types.UserData, len(partial))
		}
		for k, v := range partial {
			sess.UserData[k] = v
		}
	})
}

// Logout clears every field in a single update
func (s *Store) Logout() {
	s.mutate(func(sess *types.Session) {
		*sess = types.Session{}
	})
}

// Subscribe registers fn to receive a snapshot after every mutation.
// Snapshots arrive in mutation order, so the last one seen always matches
// Snapshot. fn may read the store but must not mutate it.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(types.Session)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.subs == nil {
		s.subs = make(map[int]func(types.Session))
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// mutate applies fn and persists the result while still holding the write
// lock, so stored order matches mutation order. Subscribers run after the
// write lock is released but before the next mutation starts.
func (s *Store) mutate(fn func(*types.Session)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	fn(&s.session)
	snap := cloneSession(s.session)
	s.persist(snap)
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Store) persist(sess types.Session) {
	if s.persister == nil {
		return
	}

	data, err := Encode(sess)
	if err == nil {
		err = s.persister.Save(types.StorageKey, data)
	}
	if err != nil && s.logger != nil {
		s.logger.Error("Failed to persist session", "error", err)
	}
}

func (s *Store) notify(sess types.Session) {
	s.subMu.Lock()
	fns := make([]func(types.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(cloneSession(sess))
	}
}

func cloneSession(sess types.Session) types.Session {
	dup := sess
	dup.UserData = sess.UserData.Clone()
	return dup
}

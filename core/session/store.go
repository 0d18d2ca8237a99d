package session

import "sync"

type (
	// Store persists the session in some client-visible medium. All
	// operations are synchronous and last-writer-wins; an empty medium is
	// not an error.
	Store interface {
		Set(Session)
		Get() (Session, bool)
		Clear()
	}

	// Query derives the authenticated/role state from a Store on demand.
	// It caches nothing, so two reads without an intervening write always
	// agree.
	Query struct {
		store Store
	}
)

func NewQuery(store Store) *Query {
	return &Query{store: store}
}

func (q *Query) IsAuthenticated() bool {
	if q.store == nil {
		return false
	}
	sess, ok := q.store.Get()
	return ok && sess.AccessToken != ""
}

func (q *Query) Role() Role {
	if q.store == nil {
		return RoleUnknown
	}
	sess, ok := q.store.Get()
	if !ok {
		return RoleUnknown
	}
	return sess.normalize().Role
}

// MemoryStore is an in-process Store used by tests and the ops CLI.
type MemoryStore struct {
	mu   sync.Mutex
	sess Session
	set  bool
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Set(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = sess.normalize()
	s.set = true
}

func (s *MemoryStore) Get() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set || s.sess.IsZero() {
		return Session{}, false
	}
	return s.sess, true
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = Session{}
	s.set = false
}

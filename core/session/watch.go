package session

import "sync"

// Watched decorates a Store with synchronous subscriber notification so the
// rest of the portal reflects logins and logouts immediately instead of
// polling the cookies on an interval.
type Watched struct {
	Store

	mu   sync.Mutex
	subs []func(Session, bool)
}

// Watch wraps store; fns are notified on every Set (loggedIn=true) and
// Clear (loggedIn=false), in subscription order, before the call returns.
func Watch(store Store, fns ...func(sess Session, loggedIn bool)) *Watched {
	return &Watched{Store: store, subs: fns}
}

// Subscribe registers fn and returns a cancel func.
func (w *Watched) Subscribe(fn func(sess Session, loggedIn bool)) (cancel func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subs = append(w.subs, fn)
	i := len(w.subs) - 1
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.subs[i] = nil
	}
}

func (w *Watched) Set(sess Session) {
	w.Store.Set(sess)
	w.notify(sess.normalize(), true)
}

func (w *Watched) Clear() {
	w.Store.Clear()
	w.notify(Session{Role: RoleUnknown}, false)
}

func (w *Watched) notify(sess Session, loggedIn bool) {
	w.mu.Lock()
	subs := make([]func(Session, bool), len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(sess, loggedIn)
		}
	}
}

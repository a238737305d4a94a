package usecase

import "sync"

// SessionLocks es un mutex por sesión. Las entradas se liberan cuando nadie
// las usa, así las sesiones inactivas no ocupan memoria.
type SessionLocks struct {
	mu sync.Mutex
	m  map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{m: map[string]*sessionLock{}}
}

// Lock bloquea la sesión id y devuelve la función que la libera.
func (l *SessionLocks) Lock(id string) (unlock func()) {
	l.mu.Lock()
	e, ok := l.m[id]
	if !ok {
		e = &sessionLock{}
		l.m[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}

func (l *SessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

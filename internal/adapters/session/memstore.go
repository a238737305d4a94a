// Package session guarda el carrito de cada sesión del lado del servidor.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/phenrril/nutristore/internal/domain"
)

type entry struct {
	cart    domain.Cart
	touched time.Time
}

// MemStore es un CartStore en memoria. Cada Save reemplaza el carrito entero
// con una copia; nadie fuera del store comparte sus slices.
type MemStore struct {
	mu  sync.RWMutex
	m   map[string]entry
	ttl time.Duration
	now func() time.Time
}

// NewMemStore crea el store. Con ttl > 0 los carritos sin uso por más de ttl
// se descartan en Sweep.
func NewMemStore(ttl time.Duration) *MemStore {
	return &MemStore{m: map[string]entry{}, ttl: ttl, now: time.Now}
}

func (s *MemStore) Load(_ context.Context, sessionID string) (domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m[sessionID]
	if !ok {
		return domain.Cart{}, nil
	}
	return e.cart.Clone(), nil
}

func (s *MemStore) Save(_ context.Context, sessionID string, c domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sessionID] = entry{cart: c.Clone(), touched: s.now()}
	return nil
}

func (s *MemStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, sessionID)
	return nil
}

// Sweep elimina las sesiones vencidas y devuelve cuántas borró.
func (s *MemStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	limit := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.m {
		if e.touched.Before(limit) {
			delete(s.m, id)
			n++
		}
	}
	return n
}

// Run ejecuta Sweep periódicamente hasta que ctx termine.
func (s *MemStore) Run(ctx context.Context, every time.Duration) {
	if s.ttl <= 0 || every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

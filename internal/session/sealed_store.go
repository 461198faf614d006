package session

import (
	"context"
	"fmt"
	"time"
)

// Sealer cifra y descifra valores (ver security/secretbox).
type Sealer interface {
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// SealedStore envuelve un Store y sella cada valor antes de guardarlo. Lo
// usamos con redis y postgres para que el token secret pendiente no quede en
// claro fuera del proceso.
type SealedStore struct {
	inner Store
	box   Sealer
}

func NewSealedStore(inner Store, box Sealer) *SealedStore {
	return &SealedStore{inner: inner, box: box}
}

func (s *SealedStore) Get(ctx context.Context, sessionID, slot string) ([]byte, error) {
	v, err := s.inner.Get(ctx, sessionID, slot)
	if err != nil {
		return nil, err
	}
	return s.open(v)
}

func (s *SealedStore) Set(ctx context.Context, sessionID, slot string, value []byte, ttl time.Duration) error {
	sealed, err := s.box.Seal(value)
	if err != nil {
		return fmt.Errorf("session: seal: %w", err)
	}
	return s.inner.Set(ctx, sessionID, slot, sealed, ttl)
}

func (s *SealedStore) Delete(ctx context.Context, sessionID, slot string) error {
	return s.inner.Delete(ctx, sessionID, slot)
}

// Take consume el valor en el store interno (atómico ahí) y después lo abre.
func (s *SealedStore) Take(ctx context.Context, sessionID, slot string) ([]byte, error) {
	v, err := s.inner.Take(ctx, sessionID, slot)
	if err != nil {
		return nil, err
	}
	return s.open(v)
}

func (s *SealedStore) open(v []byte) ([]byte, error) {
	pt, err := s.box.Open(v)
	if err != nil {
		return nil, fmt.Errorf("session: open: %w", err)
	}
	return pt, nil
}

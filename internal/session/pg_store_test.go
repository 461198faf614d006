package session

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Corre contra un postgres real sólo si POSTGRES_DSN está seteada.
func pgForTest(t *testing.T) *PGStore {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	s, err := OpenPGStore(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestPGStore_SetGetTake(t *testing.T) {
	s := pgForTest(t)
	ctx := context.Background()
	sid := uuid.NewString()

	require.NoError(t, s.Set(ctx, sid, "oauth", []byte("v1"), time.Minute))
	require.NoError(t, s.Set(ctx, sid, "oauth", []byte("v2"), time.Minute))

	v, err := s.Get(ctx, sid, "oauth")
	require.NoError(t, err)
	require.Equal(t, "v2", string(v))

	v, err = s.Take(ctx, sid, "oauth")
	require.NoError(t, err)
	require.Equal(t, "v2", string(v))

	_, err = s.Take(ctx, sid, "oauth")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPGStore_ExpiredIsNotFound(t *testing.T) {
	s := pgForTest(t)
	ctx := context.Background()
	sid := uuid.NewString()

	require.NoError(t, s.Set(ctx, sid, "oauth", []byte("v"), time.Minute))
	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err := s.Get(ctx, sid, "oauth")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Take(ctx, sid, "oauth")
	require.ErrorIs(t, err, ErrNotFound)

	n, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, int64(0))
}

func TestPGStore_TakeFirstConsumerWins(t *testing.T) {
	s := pgForTest(t)
	ctx := context.Background()
	sid := uuid.NewString()
	require.NoError(t, s.Set(ctx, sid, "oauth", []byte("pending"), time.Minute))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Take(ctx, sid, "oauth")
			switch {
			case err == nil:
				wins.Add(1)
			case !errors.Is(err, ErrNotFound):
				t.Errorf("Take: %v", err)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), wins.Load())
}

package basket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountLocksSerializeSameAccount(t *testing.T) {
	locks := newAccountLocks()
	id := uuid.New()

	release, err := locks.acquire(context.Background(), id)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		r, err := locks.acquire(context.Background(), id)
		if err == nil {
			close(acquired)
			r()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired while lock was held")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second holder never acquired")
	}
}

func TestAccountLocksIndependentAccounts(t *testing.T) {
	locks := newAccountLocks()

	r1, err := locks.acquire(context.Background(), uuid.New())
	require.NoError(t, err)
	defer r1()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	r2, err := locks.acquire(ctx, uuid.New())
	require.NoError(t, err)
	r2()
}

func TestAccountLocksHonourContextAndCleanUp(t *testing.T) {
	locks := newAccountLocks()
	id := uuid.New()

	release, err := locks.acquire(context.Background(), id)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locks.acquire(ctx, id)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, locks.size())

	release()
	release()
	assert.Equal(t, 0, locks.size())
}

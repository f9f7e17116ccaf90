package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mangaq/internal/queryir"
)

func TestLookups_Users(t *testing.T) {
	l := NewLookups()

	id, err := l.ResolveUserID(context.Background(), "ODA")
	require.NoError(t, err)
	assert.Equal(t, "user:oda", id)

	_, err = l.ResolveUserID(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUnknownName)
}

func TestLookups_TagsBySex(t *testing.T) {
	l := NewLookups()

	ids, err := l.ResolveTagIDs(context.Background(), nil, "glasses")
	require.NoError(t, err)
	assert.Equal(t, []string{"tag:glasses-f", "tag:glasses-m"}, ids)

	female := queryir.TagSexFemale
	ids, err = l.ResolveTagIDs(context.Background(), &female, "glasses")
	require.NoError(t, err)
	assert.Equal(t, []string{"tag:glasses-f"}, ids)

	ids, err = l.ResolveTagIDs(context.Background(), nil, "ROMAN")
	require.NoError(t, err)
	assert.Equal(t, []string{"tag:romance", "tag:romcom"}, ids)
}

func TestLookups_RecordsCalls(t *testing.T) {
	l := NewLookups()
	_, _ = l.ResolveKindID(context.Background(), "manga")
	_, _ = l.ResolveUserID(context.Background(), "oda")

	calls := l.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, Call{Seq: 1, Method: "kind", Arg: "manga"}, calls[0])
	assert.Equal(t, Call{Seq: 2, Method: "user", Arg: "oda"}, calls[1])

	l.Reset()
	assert.Zero(t, l.CallCount())
}

func TestLookups_BlockHonoursCancel(t *testing.T) {
	l := NewLookups()
	l.Block = map[string]chan struct{}{"oda": make(chan struct{})}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := l.ResolveUserID(ctx, "oda")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLookups_ThreadSafe(t *testing.T) {
	l := NewLookups()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.ResolveUserID(context.Background(), "oda")
		}()
	}
	wg.Wait()

	calls := l.Calls()
	require.Len(t, calls, n)
	seen := make(map[int64]bool, n)
	for _, c := range calls {
		seen[c.Seq] = true
	}
	assert.Len(t, seen, n, "sequence numbers must be unique")
}

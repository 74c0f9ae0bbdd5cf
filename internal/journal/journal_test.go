package journal

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func appendAll(t *testing.T, j *Journal, records ...string) {
	t.Helper()
	for _, r := range records {
		require.NoError(t, j.Append(context.Background(), []byte(r)))
	}
}

func collect(t *testing.T, j *Journal) []string {
	t.Helper()
	var out []string
	err := j.Replay(context.Background(), func(record []byte) error {
		out = append(out, string(record))
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestInMemory(t *testing.T) {
	j, err := Open(Config{})
	require.NoError(t, err)
	defer j.Close()

	appendAll(t, j, "first", "second", "third")
	require.Equal(t, uint64(3), j.Len())
	require.Equal(t, []string{"first", "second", "third"}, collect(t, j))
}

func TestReplayOrderPastByteBoundary(t *testing.T) {
	j, err := Open(Config{})
	require.NoError(t, err)
	defer j.Close()

	var want []string
	for i := range 300 {
		want = append(want, fmt.Sprintf("record %d", i))
	}
	appendAll(t, j, want...)
	require.Equal(t, want, collect(t, j))
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(Config{Path: dir})
	require.NoError(t, err)
	appendAll(t, j, "a", "b")
	require.NoError(t, j.Close())

	j, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer j.Close()
	require.Equal(t, uint64(2), j.Len())

	appendAll(t, j, "c")
	require.Equal(t, []string{"a", "b", "c"}, collect(t, j))
}

func TestReplayStopsOnError(t *testing.T) {
	j, err := Open(Config{})
	require.NoError(t, err)
	defer j.Close()
	appendAll(t, j, "a", "b", "c")

	stop := errors.New("stop")
	seen := 0
	err = j.Replay(context.Background(), func([]byte) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 2, seen)
}

func TestClosed(t *testing.T) {
	j, err := Open(Config{})
	require.NoError(t, err)
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())

	require.ErrorIs(t, j.Append(context.Background(), []byte("x")), ErrClosed)
	require.ErrorIs(t, j.Replay(context.Background(), func([]byte) error { return nil }), ErrClosed)
}

func TestCanceledContext(t *testing.T) {
	j, err := Open(Config{})
	require.NoError(t, err)
	defer j.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, j.Append(ctx, []byte("x")), context.Canceled)
	require.Zero(t, j.Len())
}

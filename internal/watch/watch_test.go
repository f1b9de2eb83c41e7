package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "hibidash.db")
	require.NoError(t, os.WriteFile(db, nil, 0o644))

	w, err := New(db, 50*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(db, []byte{byte(i)}, 0o644))
	}

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change signal")
	}

	select {
	case <-w.Changes():
		t.Fatal("burst should produce a single signal")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "hibidash.db"), 20*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case <-w.Changes():
		t.Fatal("unrelated file should not signal")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestStartTwice(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "hibidash.db"), time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	assert.Error(t, w.Start())
	require.NoError(t, w.Stop())

	_, ok := <-w.Changes()
	assert.False(t, ok, "Changes should be closed after Stop")
}

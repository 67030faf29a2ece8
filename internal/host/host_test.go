package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "git.home.luguber.info/inful/incrbuild/internal/errors"
	"git.home.luguber.info/inful/incrbuild/internal/vfs"
)

func TestClosedSetResolution(t *testing.T) {
	store := vfs.NewStore()
	store.Add("src/main.ts", "content", nil)

	a := New(store, false)

	assert.True(t, a.FileExists("src/main.ts"))
	assert.False(t, a.FileExists("src/missing.ts"))

	contents, err := a.ReadFile("src/main.ts")
	require.NoError(t, err)
	assert.Equal(t, "content", contents)

	_, err = a.ReadFile("src/missing.ts")
	require.Error(t, err)
	assert.True(t, errs.IsResolution(err), "closed-set miss must be a resolution failure")
}

func TestExternalFallbackReadsAndMemoizes(t *testing.T) {
	dir := t.TempDir()
	external := filepath.Join(dir, "dep.ts")
	require.NoError(t, os.WriteFile(external, []byte("external content"), 0640))

	store := vfs.NewStore()
	a := New(store, true)

	normalized := vfs.NormalizePath(external)
	contents, err := a.ReadFile(normalized)
	require.NoError(t, err)
	assert.Equal(t, "external content", contents)

	// The read must be memoized as an ExternalFile: delete the real file
	// and read again.
	require.NoError(t, os.Remove(external))
	contents, err = a.ReadFile(normalized)
	require.NoError(t, err)
	assert.Equal(t, "external content", contents)
}

func TestExternalFallbackDisabledDoesNotTouchDisk(t *testing.T) {
	dir := t.TempDir()
	onDisk := filepath.Join(dir, "real.ts")
	require.NoError(t, os.WriteFile(onDisk, []byte("x"), 0640))

	a := New(vfs.NewStore(), false)
	assert.False(t, a.FileExists(vfs.NormalizePath(onDisk)))
	_, err := a.ReadFile(vfs.NormalizePath(onDisk))
	assert.Error(t, err)
}

func TestDirectoryExists(t *testing.T) {
	store := vfs.NewStore()
	store.Add("src/lib/util.ts", "x", nil)

	closed := New(store, false)
	assert.True(t, closed.DirectoryExists("src/lib"))
	assert.False(t, closed.DirectoryExists("elsewhere"))

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0750))
	open := New(store, true)
	assert.True(t, open.DirectoryExists(vfs.NormalizePath(filepath.Join(dir, "nested"))))
	assert.False(t, open.DirectoryExists(vfs.NormalizePath(filepath.Join(dir, "absent"))))
}

func TestProbeCacheIsDeterministicForFixedState(t *testing.T) {
	dir := t.TempDir()
	a := New(vfs.NewStore(), true)

	missing := vfs.NormalizePath(filepath.Join(dir, "late.ts"))
	assert.False(t, a.FileExists(missing))

	// The probe result is memoized for the adapter's lifetime; a file
	// appearing later is not observed until a fresh adapter is built for
	// the next cycle.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.ts"), []byte("x"), 0640))
	assert.False(t, a.FileExists(missing))
	assert.True(t, New(vfs.NewStore(), true).FileExists(missing))
}

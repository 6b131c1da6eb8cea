package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hussein-Mazeh/guardvault/store"
)

func backends(t *testing.T) map[string]store.BlobStore {
	t.Helper()
	ctx := context.Background()

	fs, err := store.NewFileStore(filepath.Join(t.TempDir(), "vault"))
	require.NoError(t, err)

	sq, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), store.SQLiteFilename))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]store.BlobStore{
		"file":   fs,
		"sqlite": sq,
		"memory": store.NewMemoryStore(),
	}
}

func TestBlobStore_Contract(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "accounts")
			require.ErrorIs(t, err, store.ErrNotFound)

			require.NoError(t, s.Put(ctx, "accounts", []byte(`{"iv":[1]}`)))
			require.NoError(t, s.Put(ctx, "accounts", []byte(`{"iv":[2]}`)))

			got, err := s.Get(ctx, "accounts")
			require.NoError(t, err)
			assert.Equal(t, `{"iv":[2]}`, string(got))

			require.NoError(t, s.Delete(ctx, "accounts"))
			require.NoError(t, s.Delete(ctx, "accounts"), "deleting a missing blob is not an error")

			_, err = s.Get(ctx, "accounts")
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestBlobStore_RejectsBadNames(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, bad := range []string{"", "..", "a/b", `a\b`} {
				assert.Error(t, s.Put(ctx, bad, []byte("x")), "name %q", bad)
			}
		})
	}
}

func TestFileStore_AtomicReplaceLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "vault")
	s, err := store.NewFileStore(dir)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Put(ctx, "accounts", []byte{byte(i)}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "accounts.json", entries[0].Name())

	if runtime.GOOS != "windows" {
		info, err := os.Stat(s.Path("accounts"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestFileStore_PutHonoursCancelledContext(t *testing.T) {
	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Put(ctx, "accounts", []byte("x")), context.Canceled)
}

func TestNewFileStoreRequiresDir(t *testing.T) {
	_, err := store.NewFileStore("")
	assert.Error(t, err)
}

func TestMemoryStore_FailPuts(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Put(ctx, "accounts", []byte("old")))

	boom := errors.New("disk full")
	s.FailPuts(boom)
	assert.ErrorIs(t, s.Put(ctx, "accounts", []byte("new")), boom)

	got, err := s.Get(ctx, "accounts")
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Put(ctx, "accounts", []byte("abc")))

	got, _ := s.Get(ctx, "accounts")
	got[0] = 'z'
	again, _ := s.Get(ctx, "accounts")
	assert.Equal(t, "abc", string(again))
}

func TestParseBackend(t *testing.T) {
	cases := map[string]store.Backend{
		"":         store.BackendFile,
		"file":     store.BackendFile,
		"SQLite":   store.BackendSQLite,
		"keychain": store.BackendKeychain,
		" memory ": store.BackendMemory,
	}
	for in, want := range cases {
		got, err := store.ParseBackend(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := store.ParseBackend("s3")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := store.Open(ctx, store.BackendSQLite, dir)
	require.NoError(t, err)
	defer s.Close()
	_, err = os.Stat(filepath.Join(dir, store.SQLiteFilename))
	assert.NoError(t, err)

	if runtime.GOOS != "darwin" {
		_, err = store.Open(ctx, store.BackendKeychain, dir)
		assert.ErrorIs(t, err, store.ErrUnsupported)
	}

	_, err = store.Open(ctx, store.Backend("s3"), dir)
	assert.Error(t, err)
}

package oauth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	return NewStore(filepath.Join(t.TempDir(), "credentials.json"))
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	cred := &Credential{
		Type:    CredentialTypeOAuth,
		Access:  "access-1",
		Refresh: "refresh-1",
		Expires: time.Now().Add(time.Hour).UnixMilli(),
	}
	require.NoError(t, store.Save("codex", cred))

	got, ok := store.Get("codex")
	require.True(t, ok)
	require.Equal(t, cred.Access, got.Access)
	require.Equal(t, cred.Refresh, got.Refresh)
	require.Equal(t, cred.Expires, got.Expires)

	_, ok = store.Get("copilot")
	require.False(t, ok)
}

func TestStoreFilePermissions(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Save("codex", NewAPIKeyCredential("sk-test")))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// Permissions are re-applied on every write, even if loosened between
	// writes.
	require.NoError(t, os.Chmod(store.Path(), 0o644))
	require.NoError(t, store.Save("copilot", NewAPIKeyCredential("sk-2")))

	info, err = os.Stat(store.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreLazyCreation(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "credentials.json")
	store := NewStore(path)

	// Reads against a missing file behave as an empty store and create it.
	_, ok := store.Get("codex")
	require.False(t, ok)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreCorruptFileDegradesToEmpty(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o700))
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	_, ok := store.Get("codex")
	require.False(t, ok)

	// A save over the corrupt file starts a fresh document.
	require.NoError(t, store.Save("codex", NewAPIKeyCredential("sk")))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	var doc map[string]*Credential
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc, 1)
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Save("codex", NewAPIKeyCredential("sk")))

	removed, err := store.Delete("codex")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = store.Delete("codex")
	require.NoError(t, err)
	require.False(t, removed)
}

func TestStoreListSorted(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Save("geminicli", NewAPIKeyCredential("g")))
	require.NoError(t, store.Save("codex", NewAPIKeyCredential("c")))
	require.NoError(t, store.Save("copilot", NewAPIKeyCredential("p")))

	entries := store.List()
	require.Len(t, entries, 3)
	require.Equal(t, "codex", entries[0].Provider)
	require.Equal(t, "copilot", entries[1].Provider)
	require.Equal(t, "geminicli", entries[2].Provider)
}

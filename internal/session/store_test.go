package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comms-metrics-backend/internal/model"
	"comms-metrics-backend/internal/session"
)

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := session.NewStore(path)

	want := model.Session{Token: "tok", UserID: "svc", TenantID: "T1", TenantName: "Acme", DealerID: "D1", RoleID: "R1"}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, path, store.Path())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_MissingOrEmpty(t *testing.T) {
	dir := t.TempDir()

	_, err := session.NewStore(filepath.Join(dir, "absent.json")).Load()
	assert.ErrorIs(t, err, session.ErrNoSession)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = session.NewStore(empty).Load()
	assert.ErrorIs(t, err, session.ErrNoSession)

	blank := filepath.Join(dir, "blank.json")
	require.NoError(t, os.WriteFile(blank, []byte(`{}`), 0o600))
	_, err = session.NewStore(blank).Load()
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := session.NewStore(path).Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNoSession)
}

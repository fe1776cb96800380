package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comms-metrics-backend/internal/model"
	"comms-metrics-backend/internal/session"
)

func TestRun_SavesSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	want := model.Session{Token: "secret-token", UserID: "svc"}

	require.NoError(t, run(ctlConfig{path: path, session: want}))

	got, err := session.NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRun_RequiresToken(t *testing.T) {
	err := run(ctlConfig{path: filepath.Join(t.TempDir(), "s.json"), session: model.Session{UserID: "svc"}})
	assert.ErrorIs(t, err, errTokenRequired)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "********oken", maskToken("secret-token"))
	assert.Equal(t, "***", maskToken("abc"))
	assert.Equal(t, "", maskToken(""))
}

package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retention/internal/dataset"
)

func TestRootCmd_WritesDatasets(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("DATA_BACKEND", "files")
	t.Setenv("AMQP_URL", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--seed", "7", "--data-dir", dir})
	require.NoError(t, cmd.Execute())

	for _, name := range dataset.Files {
		assert.FileExists(t, filepath.Join(dir, name))
		assert.Contains(t, out.String(), "- "+name+"\n")
	}
}

func TestRootCmd_SQLiteSnapshot(t *testing.T) {
	root := t.TempDir()
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(root, "db", "retention.db"))
	t.Setenv("AMQP_URL", "")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--data-dir", filepath.Join(root, "data")})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, filepath.Join(root, "db", "retention.db"))
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"extra"})
	assert.Error(t, cmd.Execute())
}

package main

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCLIEnv(t *testing.T, driver, file string) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", driver)
	t.Setenv("STORAGE_PATH", filepath.Join(t.TempDir(), file))
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("ADMIN_EMAIL_MARKER", "admin")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLISessionPersistsAcrossInvocations(t *testing.T) {
	setupCLIEnv(t, "file", "storage.json")

	out, err := runCLI(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	out, err = runCLI(t, "login", "-e", "admin@x.com", "-p", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Admin User <admin@x.com>")

	out, err = runCLI(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "role: admin")

	out, err = runCLI(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	out, err = runCLI(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestCLILoginRequiresCredentials(t *testing.T) {
	setupCLIEnv(t, "file", "storage.json")

	_, err := runCLI(t, "login", "-e", "admin@x.com")
	assert.Error(t, err)
}

func TestCLIRegister(t *testing.T) {
	setupCLIEnv(t, "file", "storage.json")

	out, err := runCLI(t, "register", "-n", "Ana", "-e", "ana@x.com", "-p", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered Ana <ana@x.com> (role: new-user")
}

func TestCLITaskCommands(t *testing.T) {
	setupCLIEnv(t, "sqlite", "storage.db")

	out, err := runCLI(t, "task", "stats")
	require.NoError(t, err)
	assert.Regexp(t, `Total:\s+6`, out)
	assert.Regexp(t, `In progress:\s+2`, out)

	_, err = runCLI(t, "task", "add", "Write docs")
	assert.Error(t, err, "no session and no assignee")

	_, err = runCLI(t, "login", "-e", "bob@x.com", "-p", "pw")
	require.NoError(t, err)

	out, err = runCLI(t, "task", "add", "Write docs", "-p", "high", "--deadline", "72h")
	require.NoError(t, err)
	assert.Contains(t, out, "Created task")

	_, err = runCLI(t, "task", "add", "Bad", "-p", "urgent")
	assert.Error(t, err)

	out, err = runCLI(t, "task", "list", "--mine", "-p", "high")
	require.NoError(t, err)
	assert.Contains(t, out, "Write docs")
	assert.Contains(t, out, "Code review")
	assert.NotContains(t, out, "Team meeting")

	out, err = runCLI(t, "task", "update", "2", "--status", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated task 2")

	out, err = runCLI(t, "task", "list", "--status", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "Review design mockups")

	_, err = runCLI(t, "task", "update", "2")
	assert.Error(t, err, "nothing to update")

	out, err = runCLI(t, "task", "delete", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task 3")

	_, err = runCLI(t, "task", "delete", "3")
	assert.Error(t, err)

	out, err = runCLI(t, "task", "stats")
	require.NoError(t, err)
	assert.Regexp(t, `Total:\s+6`, out)
	assert.Regexp(t, `Completed:\s+1`, out)

	out, err = runCLI(t, "task", "expire")
	require.NoError(t, err)
	assert.Contains(t, out, "Expired 0 task(s)")
}

func TestParseDeadline(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	got, err := parseDeadline("48h", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(48*time.Hour), got)

	got, err = parseDeadline("2025-07-01 09:30", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC), got)

	got, err = parseDeadline("2025-07-01", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = parseDeadline("tomorrow", now)
	assert.Error(t, err)
}

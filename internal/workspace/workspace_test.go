// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	log, _ := test.NewNullLogger()
	m, err := NewManager(t.TempDir(), "ws-", log)
	require.NoError(t, err)
	return m
}

func entries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	e, err := os.ReadDir(dir)
	require.NoError(t, err)
	return e
}

func TestNew_CreatesPrefixedDirectory(t *testing.T) {
	m := newTestManager(t)
	ws, err := m.New()
	require.NoError(t, err)
	defer ws.Close()

	info, err := os.Stat(ws.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, m.Root(), filepath.Dir(ws.Dir()))
	assert.Contains(t, filepath.Base(ws.Dir()), "ws-")
}

func TestNew_DistinctDirectories(t *testing.T) {
	m := newTestManager(t)
	a, err := m.New()
	require.NoError(t, err)
	defer a.Close()
	b, err := m.New()
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.Dir(), b.Dir())
}

func TestWriteFile_StaysInsideWorkspace(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "report.docx", want: "report.docx"},
		{name: "../../etc/passwd", want: "passwd"},
		{name: "nested/dir/file.pdf", want: "file.pdf"},
		{name: "", want: "input"},
	}
	m := newTestManager(t)
	ws, err := m.New()
	require.NoError(t, err)
	defer ws.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ws.WriteFile(tt.name, []byte("x"))
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(ws.Dir(), tt.want), p)
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	m := newTestManager(t)
	ws, err := m.New()
	require.NoError(t, err)
	defer ws.Close()

	_, err = ws.ReadFile(ws.Path("nope.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDo_RemovesWorkspaceOnSuccess(t *testing.T) {
	m := newTestManager(t)
	err := m.Do(func(ws *Workspace) error {
		_, err := ws.WriteFile("a.pdf", []byte("data"))
		if err != nil {
			return err
		}
		_, err = ws.Subdir("pages")
		return err
	})
	require.NoError(t, err)
	assert.Empty(t, entries(t, m.Root()))
}

func TestDo_RemovesWorkspaceOnError(t *testing.T) {
	m := newTestManager(t)
	boom := errors.New("boom")
	err := m.Do(func(ws *Workspace) error {
		_, _ = ws.WriteFile("a.pdf", []byte("data"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, entries(t, m.Root()))
}

func TestDo_RemovesWorkspaceOnPanic(t *testing.T) {
	m := newTestManager(t)
	func() {
		defer func() { _ = recover() }()
		_ = m.Do(func(ws *Workspace) error {
			_, _ = ws.WriteFile("a.pdf", []byte("data"))
			panic("tool exploded")
		})
	}()
	assert.Empty(t, entries(t, m.Root()))
}

func TestClose_Idempotent(t *testing.T) {
	log, hook := test.NewNullLogger()
	m, err := NewManager(t.TempDir(), "", log)
	require.NoError(t, err)
	ws, err := m.New()
	require.NoError(t, err)

	ws.Close()
	ws.Close()

	_, err = os.Stat(ws.Dir())
	assert.True(t, os.IsNotExist(err))
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, logrus.WarnLevel, e.Level, "unexpected warning: %s", e.Message)
	}
}

func TestNewManager_DefaultsToTempDir(t *testing.T) {
	m, err := NewManager("", "x-", nil)
	require.NoError(t, err)
	assert.Equal(t, os.TempDir(), m.Root())
}

func TestDo_CleanupFailureIsSwallowed(t *testing.T) {
	log, hook := test.NewNullLogger()
	m, err := NewManager(t.TempDir(), "ws-", log)
	require.NoError(t, err)
	calls := 0
	m.remove = func(string) error {
		calls++
		return errors.New("device busy")
	}

	t.Run("success result is kept", func(t *testing.T) {
		err := m.Do(func(ws *Workspace) error { return nil })
		require.NoError(t, err)
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.Equal(t, "workspace cleanup failed", hook.LastEntry().Message)
	})

	t.Run("fn error is not replaced", func(t *testing.T) {
		boom := errors.New("boom")
		err := m.Do(func(ws *Workspace) error { return boom })
		assert.Equal(t, boom, err)
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	})

	assert.Equal(t, 2, calls)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workspace provides per-request scratch directories whose lifetime
// is bound to a single conversion.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// Manager creates workspaces under a common root directory.
type Manager struct {
	root   string
	prefix string
	log    logrus.FieldLogger
	remove func(string) error
}

// NewManager returns a Manager rooted at root. An empty root means
// os.TempDir(). The root is created if it does not exist.
func NewManager(root, prefix string, log logrus.FieldLogger) (*Manager, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace root %s: %w", root, err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{root: root, prefix: prefix, log: log, remove: os.RemoveAll}, nil
}

// Root returns the directory workspaces are created in.
func (m *Manager) Root() string { return m.root }

// Workspace is an exclusively owned directory. Close removes it and every
// file inside; it is safe to call more than once.
type Workspace struct {
	dir    string
	log    logrus.FieldLogger
	remove func(string) error
	once   sync.Once
}

// New creates a fresh workspace. The caller must defer Close.
func (m *Manager) New() (*Workspace, error) {
	name := m.prefix + strings.ToLower(ulid.Make().String())
	dir := filepath.Join(m.root, name)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{dir: dir, log: m.log, remove: m.remove}, nil
}

// Do runs fn inside a new workspace and removes the workspace when fn
// returns, whether it succeeded, failed or panicked.
func (m *Manager) Do(fn func(ws *Workspace) error) error {
	ws, err := m.New()
	if err != nil {
		return err
	}
	defer ws.Close()
	return fn(ws)
}

// Dir returns the absolute workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Path joins elem onto the workspace directory.
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.dir}, elem...)...)
}

// Subdir creates a directory inside the workspace and returns its path.
func (w *Workspace) Subdir(name string) (string, error) {
	p := w.Path(name)
	if err := os.MkdirAll(p, 0o700); err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}
	return p, nil
}

// WriteFile stores data under name inside the workspace and returns the full
// path. Only the base of name is used so uploads cannot escape the directory.
func (w *Workspace) WriteFile(name string, data []byte) (string, error) {
	p := w.Path(safeName(name))
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", filepath.Base(p), err)
	}
	return p, nil
}

// ReadFile reads a file produced inside the workspace. A missing file is
// reported with an error wrapping os.ErrNotExist.
func (w *Workspace) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return data, nil
}

// Close removes the workspace. Removal errors are logged and swallowed so
// they never mask the outcome of the conversion.
func (w *Workspace) Close() {
	w.once.Do(func() {
		remove := w.remove
		if remove == nil {
			remove = os.RemoveAll
		}
		if err := remove(w.dir); err != nil {
			w.log.WithError(err).WithField("workspace", w.dir).Warn("workspace cleanup failed")
		}
	})
}

func safeName(name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == "" {
		return "input"
	}
	return base
}

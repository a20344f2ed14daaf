// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolchain locates and runs the external executables behind the
// local engine: LibreOffice, Ghostscript, pdftoppm and Tesseract.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/docverse/pkg/types"
)

// Tool identifies one external capability.
type Tool string

const (
	Soffice     Tool = "soffice"
	Ghostscript Tool = "ghostscript"
	Pdftoppm    Tool = "pdftoppm"
	Tesseract   Tool = "tesseract"
)

// All lists every tool in report order.
var All = []Tool{Soffice, Ghostscript, Pdftoppm, Tesseract}

var (
	// ErrToolNotFound is returned when no candidate binary for a tool exists.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolFailed is returned when a tool exits with a non-zero status.
	ErrToolFailed = errors.New("tool failed")

	// ErrNoOutput is returned when a tool exits cleanly but the expected
	// output file is missing or empty.
	ErrNoOutput = errors.New("tool produced no output")
)

// candidates lists binaries tried in order when no override is configured.
var candidates = map[Tool][]string{
	Soffice: {
		"soffice",
		"libreoffice",
		"/opt/homebrew/bin/soffice",
		"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	},
	Ghostscript: {"gs", "gswin64c", "gswin32c"},
	Pdftoppm:    {"pdftoppm"},
	Tesseract:   {"tesseract"},
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

var defaultExec = &osExecutor{}

// Status describes how a tool was resolved.
type Status struct {
	Tool  Tool   `json:"tool" yaml:"tool"`
	Path  string `json:"path" yaml:"path"`
	Found bool   `json:"found" yaml:"found"`
}

// Toolchain holds the resolved executable for every tool.
type Toolchain struct {
	exec  executor
	paths map[Tool]string
	log   logrus.FieldLogger
}

// New resolves every tool once, honoring overrides from cfg. Tools that
// cannot be found are recorded as missing; running them later returns
// ErrToolNotFound.
func New(cfg types.ToolsConfig, log logrus.FieldLogger) *Toolchain {
	return newToolchain(cfg, defaultExec, log)
}

func newToolchain(cfg types.ToolsConfig, exec executor, log logrus.FieldLogger) *Toolchain {
	if log == nil {
		log = logrus.StandardLogger()
	}
	overrides := map[Tool]string{
		Soffice:     cfg.Soffice,
		Ghostscript: cfg.Ghostscript,
		Pdftoppm:    cfg.Pdftoppm,
		Tesseract:   cfg.Tesseract,
	}
	tc := &Toolchain{exec: exec, paths: make(map[Tool]string), log: log}
	for _, tool := range All {
		tc.paths[tool] = resolve(exec, overrides[tool], candidates[tool])
	}
	return tc
}

// resolve returns the first candidate found on PATH. An override is always
// used when set, resolved through PATH when possible.
func resolve(exec executor, override string, cands []string) string {
	if override != "" {
		if p, err := exec.LookPath(override); err == nil {
			return p
		}
		return override
	}
	for _, c := range cands {
		if p, err := exec.LookPath(c); err == nil {
			return p
		}
	}
	return ""
}

// Path returns the executable resolved for tool.
func (t *Toolchain) Path(tool Tool) (string, error) {
	p := t.paths[tool]
	if p == "" {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, tool)
	}
	return p, nil
}

// Report lists the resolution status of every tool.
func (t *Toolchain) Report() []Status {
	out := make([]Status, 0, len(All))
	for _, tool := range All {
		p := t.paths[tool]
		out = append(out, Status{Tool: tool, Path: p, Found: p != ""})
	}
	return out
}

// Run executes tool with args in dir and waits for it to exit. A non-zero
// exit is returned as ErrToolFailed; the tool's output is only logged.
func (t *Toolchain) Run(ctx context.Context, tool Tool, dir string, args ...string) error {
	bin, err := t.Path(tool)
	if err != nil {
		return err
	}
	t.log.WithFields(logrus.Fields{"tool": tool, "args": args}).Debug("running tool")
	out, err := t.exec.Run(ctx, dir, bin, args...)
	if err != nil {
		t.log.WithFields(logrus.Fields{"tool": tool, "output": string(out)}).WithError(err).Debug("tool failed")
		return fmt.Errorf("%w: %s: %v", ErrToolFailed, tool, err)
	}
	return nil
}

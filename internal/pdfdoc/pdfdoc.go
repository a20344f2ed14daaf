// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoc performs in-process PDF manipulation with pdfcpu: merging,
// page counting, encryption probing and decryption.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu otherwise creates a config directory under the user's home.
	api.DisableConfigDir()
}

var (
	// ErrTooFewInputs is returned by Merge for fewer than two documents.
	ErrTooFewInputs = errors.New("merge needs at least two documents")

	// ErrUnreadable is returned when bytes cannot be parsed as a PDF.
	ErrUnreadable = errors.New("unreadable PDF")

	// ErrWrongPassword is returned when a password does not open a document.
	ErrWrongPassword = errors.New("incorrect password")

	// ErrNotEncrypted is returned when unlocking a document that has no
	// password protection.
	ErrNotEncrypted = errors.New("document is not password protected")
)

// InputError identifies the merge input, counted from 1, that could not be
// opened.
type InputError struct {
	Input int
	Err   error
}

func (e *InputError) Error() string { return fmt.Sprintf("input %d: %v", e.Input, e.Err) }

func (e *InputError) Unwrap() error { return e.Err }

func newConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount returns the number of pages in data.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), newConfig())
	if err != nil {
		if isPasswordErr(err) {
			return 0, ErrWrongPassword
		}
		return 0, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return n, nil
}

// Merge appends every page of every input, in input order, to one new
// document. Each input is parsed before anything is written, so a corrupt
// input fails the whole call and no partial output is produced.
func Merge(inputs [][]byte) ([]byte, error) {
	if len(inputs) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewInputs, len(inputs))
	}

	want := 0
	rsc := make([]io.ReadSeeker, len(inputs))
	for i, in := range inputs {
		n, err := PageCount(in)
		if err != nil {
			return nil, &InputError{Input: i + 1, Err: err}
		}
		want += n
		rsc[i] = bytes.NewReader(in)
	}

	var out bytes.Buffer
	if err := api.MergeRaw(rsc, &out, false, newConfig()); err != nil {
		return nil, fmt.Errorf("merging %d documents: %w", len(inputs), err)
	}

	got, err := PageCount(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("reading merged document: %w", err)
	}
	if got != want {
		return nil, fmt.Errorf("merged document has %d pages, want %d", got, want)
	}
	return out.Bytes(), nil
}

// Encrypted reports whether data is password protected. A document that
// cannot be opened without a user password counts as encrypted.
func Encrypted(data []byte) (bool, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), newConfig())
	if err != nil {
		if isPasswordErr(err) {
			return true, nil
		}
		return false, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return ctx.Encrypt != nil, nil
}

// Unlock removes password protection from data. The password is tried as
// both user and owner password.
func Unlock(data []byte, password string) ([]byte, error) {
	enc, err := Encrypted(data)
	if err != nil {
		return nil, err
	}
	if !enc {
		return nil, ErrNotEncrypted
	}

	conf := newConfig()
	conf.UserPW = password
	conf.OwnerPW = password

	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(data), &out, conf); err != nil {
		if isPasswordErr(err) {
			return nil, ErrWrongPassword
		}
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return out.Bytes(), nil
}

// isPasswordErr matches pdfcpu's credential errors, which are not exported
// as stable sentinels across releases.
func isPasswordErr(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "password")
}

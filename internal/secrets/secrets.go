// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Recognized key files: adobe-client-id, adobe-client-secret.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/docverse/pkg/types"
)

// Key files understood by Apply.
const (
	CloudClientID     = "adobe-client-id"
	CloudClientSecret = "adobe-client-secret"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged at Warn and skipped.
func Load(dir string, log logrus.FieldLogger) (map[string]string, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.WithError(err).WithField("secret", name).Warn("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply fills empty cloud credentials in cfg from s and returns the sorted
// names of the secrets it used. Values already set in cfg win.
func Apply(cfg *types.CloudConfig, s map[string]string) []string {
	var used []string
	if v, ok := s[CloudClientID]; ok && cfg.ClientID == "" {
		cfg.ClientID = v
		used = append(used, CloudClientID)
	}
	if v, ok := s[CloudClientSecret]; ok && cfg.ClientSecret == "" {
		cfg.ClientSecret = v
		used = append(used, CloudClientSecret)
	}
	sort.Strings(used)
	return used
}

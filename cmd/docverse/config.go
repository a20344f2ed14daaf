// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docverse/pkg/types"
)

const defaultAddr = ":4000"

// legacyEnv maps config keys to the environment names used by earlier
// deployments. DOCVERSE_* names take precedence.
var legacyEnv = map[string]string{
	"cloud.enabled":       "ADOBE_PDF_SERVICES_ENABLED",
	"cloud.prefer":        "USE_ADOBE_AS_PRIMARY",
	"cloud.client_id":     "ADOBE_CLIENT_ID",
	"cloud.client_secret": "ADOBE_CLIENT_SECRET",
	"tools.ghostscript":   "GS_PATH",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.max_upload_bytes", 50<<20)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("workspace.root", "")
	v.SetDefault("workspace.prefix", "docverse-")

	v.SetDefault("cloud.enabled", false)
	v.SetDefault("cloud.prefer", false)
	v.SetDefault("cloud.client_id", "")
	v.SetDefault("cloud.client_secret", "")
	v.SetDefault("cloud.base_url", "https://pdf-services.adobe.io")
	v.SetDefault("cloud.poll_interval", 2*time.Second)
	v.SetDefault("cloud.http_timeout", 60*time.Second)
	v.SetDefault("cloud.max_retries", 3)

	v.SetDefault("tools.soffice", "")
	v.SetDefault("tools.ghostscript", "")
	v.SetDefault("tools.pdftoppm", "")
	v.SetDefault("tools.tesseract", "")

	v.SetDefault("ocr.dpi", 120)
	v.SetDefault("ocr.workers", runtime.NumCPU())
	v.SetDefault("ocr.default_language", "en")

	v.SetDefault("compress.default_quality", string(types.QualityMedium))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// loadConfig builds the effective configuration from defaults, the config
// file already read into v, and the environment.
func loadConfig(v *viper.Viper) (types.Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("DOCVERSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		envName := "DOCVERSE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envName, legacy); err != nil {
			return types.Config{}, fmt.Errorf("binding %s: %w", legacy, err)
		}
	}
	// server.addr has no viper default so PORT can fill it when nothing else does.
	if err := v.BindEnv("server.addr", "DOCVERSE_SERVER_ADDR"); err != nil {
		return types.Config{}, fmt.Errorf("binding server.addr: %w", err)
	}

	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
		if port := os.Getenv("PORT"); port != "" {
			c.Server.Addr = ":" + port
		}
	}
	if !c.Compress.DefaultQuality.Valid() {
		return types.Config{}, fmt.Errorf("compress.default_quality: unknown tier %q", c.Compress.DefaultQuality)
	}
	return c, nil
}

// loadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is ignored.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).WithField("file", path).Warn("could not load env file")
	}
}

func configureLogger(l *logrus.Logger, c types.LogConfig) error {
	level := c.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	l.SetLevel(lvl)

	switch strings.ToLower(c.Format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Format)
	}
	l.SetOutput(os.Stderr)
	return nil
}

// redacted returns a copy of c that is safe to print.
func redacted(c types.Config) types.Config {
	if c.Cloud.ClientSecret != "" {
		c.Cloud.ClientSecret = "********"
	}
	return c
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := yaml.Marshal(redacted(cfg))
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

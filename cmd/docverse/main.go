// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docverse CLI. It serves the HTTP
// conversion API and runs one-shot conversions from the command line.
package main

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docverse/internal/cloud"
	"github.com/pdiddy/docverse/internal/convert"
	"github.com/pdiddy/docverse/internal/secrets"
	"github.com/pdiddy/docverse/internal/toolchain"
	"github.com/pdiddy/docverse/internal/workspace"
	"github.com/pdiddy/docverse/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg and log are built once in PersistentPreRunE and never mutated after.
var (
	cfg types.Config
	log = logrus.New()
)

// rootCmd is the base command for the docverse CLI.
var rootCmd = &cobra.Command{
	Use:   "docverse",
	Short: "Document conversion service",
	Long: `docverse converts office documents and PDFs: office to PDF, PDF to office,
compression, searchable-PDF OCR, merge and unlock.

Each operation can run on the cloud PDF API or on local tools (LibreOffice,
Ghostscript, Poppler, Tesseract). The cloud engine is tried first only when it
is enabled, preferred and credentialed; on failure the local engine runs once.

Use "serve" for the HTTP API and "convert" for one-shot conversions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		s, err := secrets.Load(".secrets/", log)
		if err != nil {
			return err
		}
		if used := secrets.Apply(&c.Cloud, s); len(used) > 0 {
			log.WithField("keys", used).Info("loaded secrets")
		}

		if err := configureLogger(log, c.Log); err != nil {
			return err
		}
		if c.Cloud.Prefer && !c.Cloud.Ready() {
			log.Warn("cloud.prefer is set but the cloud engine is disabled or missing credentials; using local tools")
		}
		cfg = c
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docverse.yaml or ~/.config/docverse/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	loadDotEnv(".env")

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docverse")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docverse"))
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		log.WithField("file", viper.ConfigFileUsed()).Info("using config file")
	}
}

// newService wires the conversion service from cfg.
func newService() (*convert.Service, *toolchain.Toolchain, error) {
	ws, err := workspace.NewManager(cfg.Workspace.Root, cfg.Workspace.Prefix, log)
	if err != nil {
		return nil, nil, err
	}
	tc := toolchain.New(cfg.Tools, log)
	return convert.New(cfg, ws, tc, cloud.New(cfg.Cloud)), tc, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

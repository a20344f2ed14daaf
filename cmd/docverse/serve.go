// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docverse/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion API",
	Long: `Serve starts the HTTP API on server.addr. SIGINT or SIGTERM stops accepting
new requests and lets in-flight conversions finish within
server.shutdown_timeout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, tc, err := newService()
		if err != nil {
			return err
		}
		for _, st := range tc.Report() {
			if !st.Found {
				log.WithField("tool", st.Tool).Warn("local tool not found; operations that need it will fail without the cloud engine")
			}
		}
		log.WithFields(logrus.Fields{
			"cloud_ready": cfg.Cloud.Ready(),
			"cloud_first": cfg.Cloud.UseFirst(),
		}).Info("engines configured")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.New(cfg.Server, svc, log).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :4000, or :$PORT)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

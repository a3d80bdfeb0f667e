package main

import (
	"github.com/spf13/cobra"

	"github.com/R3E-Network/nft_layer/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only HTTP query API",
	RunE: func(cmd *cobra.Command, args []string) error {
		handler := httpapi.NewHandler(manager, httpapi.Options{
			Logger:         log.Named("httpapi"),
			Events:         eventLog,
			RateLimit:      cfg.Server.RateLimit,
			Burst:          cfg.Server.Burst,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			TrustedProxies: cfg.Server.TrustedProxies,
			Done:           cmd.Context().Done(),
		})
		return httpapi.Serve(cmd.Context(), httpapi.ServerConfig{
			Addr:         cfg.Server.Addr(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}, handler, log)
	},
}

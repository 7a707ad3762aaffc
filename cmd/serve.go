package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"coursecast/internal/api"
	"coursecast/internal/resolve"
	"coursecast/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resolution and watch-decision HTTP API",
	RunE:  serveRun,
}

func serveRun(cmd *cobra.Command, args []string) error {
	// Secrets live in the environment; a local .env is a convenience for
	// development and absence is not an error.
	_ = godotenv.Load()

	path, err := cfg.CatalogPath()
	if err != nil {
		return err
	}
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer st.Close()

	router := api.NewRouter(st, resolve.New(cfg.CDNHostname), api.Options{
		Watermark: cfg.Watermark,
	})

	debugf("listening on %s (catalog %s)", cfg.Listen, path)
	if err := router.Run(cfg.Listen); err != nil {
		return fmt.Errorf("serving API: %w", err)
	}
	return nil
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"marquee/internal/api"
	"marquee/internal/catalog"
	"marquee/internal/session"
	"marquee/internal/watchstate"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireMetadata(); err != nil {
			return err
		}
		addr := cfg.Listen
		if flagListen != "" {
			addr = flagListen
		}

		return withApp(func(ctx context.Context, a *app) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Each request carries its own identity.
			sessions := session.ContextProvider{}
			state := watchstate.New(a.db, sessions, log)
			cat := catalog.New(newMetadata(), state, sessions, a.servers, catalogOptions(), log)

			return api.NewServer(cat, state, a.accounts, log).ListenAndServe(ctx, addr)
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default from config)")
}

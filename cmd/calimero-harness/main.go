package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/calimero-network/core-runtime/internal/env"
)

func main() {
	rootCmd := &cobra.Command{Use: "calimero-harness"}
	rootCmd.AddCommand(serveCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the two-replica inspector and health servers",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := env.Load()
			if err != nil {
				logrus.Fatal(err)
			}

			log := logrus.New()
			level, err := logrus.ParseLevel(cfg.Logging.Level)
			if err != nil {
				level = logrus.InfoLevel
			}
			log.SetLevel(level)
			log.SetFormatter(&logrus.JSONFormatter{})

			s, err := newHarnessSession(log)
			if err != nil {
				log.Fatal(err)
			}

			errc := make(chan error, 2)
			go func() {
				srv := &http.Server{Addr: cfg.Harness.InspectorAddr, Handler: inspectorRouter(s)}
				log.Infof("inspector listening on %s", cfg.Harness.InspectorAddr)
				errc <- serveOrNil(srv)
			}()
			go func() {
				srv := &http.Server{Addr: cfg.Harness.HealthAddr, Handler: healthRouter(s)}
				log.Infof("health listening on %s", cfg.Harness.HealthAddr)
				errc <- serveOrNil(srv)
			}()

			if err := <-errc; err != nil {
				log.Fatal(err)
			}
		},
	}
	return cmd
}

func serveOrNil(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

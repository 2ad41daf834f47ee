package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RyanBlaney/sonido-chords/extraction"
	"github.com/RyanBlaney/sonido-chords/logging"
	"github.com/RyanBlaney/sonido-chords/server"
	"github.com/spf13/cobra"
)

var (
	listenAddr     string
	maxUploadBytes int64
	allowedOrigins []string
)

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().Int64Var(&maxUploadBytes, "max-upload", server.DefaultMaxBodyBytes, "largest accepted upload in bytes")
	serveCmd.Flags().StringSliceVar(&allowedOrigins, "cors-origin", nil, "allowed CORS origins (default any)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve chord extraction over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		extractor, err := extraction.New(cfg, nil)
		if err != nil {
			return err
		}

		srv := server.New(extractor, newDecoder(cfg), server.Options{
			MaxBodyBytes:   maxUploadBytes,
			AllowedOrigins: allowedOrigins,
		})

		httpServer := &http.Server{
			Addr:              listenAddr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logging.Info("Listening", logging.Fields{"addr": listenAddr})
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		logging.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	},
}

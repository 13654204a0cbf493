package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DylanKirbs/BiomeClassification/internal/bayes"
	"github.com/DylanKirbs/BiomeClassification/internal/feature"
	"github.com/DylanKirbs/BiomeClassification/internal/server"
	"github.com/DylanKirbs/BiomeClassification/internal/store"
)

var serveFlags struct {
	port   int
	model  string
	schema string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the classification HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		schema, err := loadSchema(serveFlags.schema)
		if err != nil {
			return err
		}
		ext := feature.NewExtractor(schema)

		var model *bayes.Model
		if serveFlags.model != "" {
			m, err := bayes.Load(serveFlags.model)
			if err != nil {
				return err
			}
			if err := m.CheckFeatures(ext.Names()); err != nil {
				return err
			}
			model = m
		}

		var st store.Store
		if s, err := openStore(ctx); err != nil {
			zap.L().Warn("run store unavailable, /v1/runs disabled", zap.Error(err))
		} else {
			st = s
			defer st.Close()
		}

		port := serveFlags.port
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: server.New(ext, model, st).Router(),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Bool("model_loaded", model != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&serveFlags.port, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.model, "model", "", "trained model to serve (optional)")
	serveCmd.Flags().StringVar(&serveFlags.schema, "schema", "", "feature schema YAML (default from config)")
	rootCmd.AddCommand(serveCmd)
}

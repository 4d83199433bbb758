package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shyptr/graphiql"
	"github.com/shyptr/graphiql/config"
	"github.com/shyptr/graphiql/middleware"
	"github.com/shyptr/graphiql/schema"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	v := config.New()
	var file string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the IDE and the /graphql/ endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, file)
			if err != nil {
				return err
			}
			logger, err := cfg.Log.Build()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&file, "config", "c", "", "config file (yaml, json or toml)")
	flags.String("listen", ":8080", "address to listen on")
	flags.String("root_url", "", "path prefix of the host application")
	flags.String("upstream.endpoint", "", "GraphQL endpoint requests are forwarded to")
	flags.String("log.level", "info", "debug, info, warn or error")
	for _, name := range []string{"listen", "root_url", "upstream.endpoint", "log.level"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store := schema.NewStore()
	if cfg.Schema.BucketURL != "" {
		s, err := schema.Load(ctx, cfg.Schema.BucketURL, cfg.Schema.Key)
		if err != nil {
			return err
		}
		store.SetSchema(s)
		logger.Info("schema loaded", zap.String("bucket", cfg.Schema.BucketURL), zap.String("key", cfg.Schema.Key))
	}

	s := graphiql.New(cfg, graphiql.WithLogger(logger), graphiql.WithStore(store))
	s.Use(middleware.Recovery(), middleware.Logger(), middleware.CORS(cfg.RootURL+"/graphql"))
	return s.Run(ctx)
}

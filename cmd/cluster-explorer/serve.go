package main

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/justestif/go-music-cluster-explorer/internal/config"
	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
	"github.com/justestif/go-music-cluster-explorer/internal/explorer"
	"github.com/justestif/go-music-cluster-explorer/internal/web"
	webfs "github.com/justestif/go-music-cluster-explorer/web"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", config.DefaultAddr, "address to listen on")
	flags.Int("sample-size", config.DefaultSampleSize, "number of random songs shown per cluster")
	flags.Bool("watch", true, "reload the dataset when the file changes")
	bindFlag(a.v, config.KeyAddr, flags.Lookup("addr"))
	bindFlag(a.v, config.KeySampleSize, flags.Lookup("sample-size"))
	bindFlag(a.v, config.KeyWatch, flags.Lookup("watch"))

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := cfg.NewLogger()

	cache := dataset.NewCache(dataset.WithLogger(log))

	// Load eagerly so a broken source is reported at startup. The server
	// still starts and shows the error until the file is fixed.
	if _, err := cache.Get(cfg.DataPath); err != nil {
		log.WithError(err).WithField("source", cfg.DataPath).Warn("Dataset is not usable yet")
	}

	if cfg.Watch {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := cache.Watch(watchCtx, cfg.DataPath); err != nil {
			log.WithError(err).Warn("File watching disabled")
		}
	}

	svc := explorer.New(cache, cfg.DataPath,
		explorer.WithSampleSize(cfg.SampleSize),
		explorer.WithLogger(log),
	)

	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}

	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:        cfg.Addr,
		Explorer:    svc,
		Logger:      log,
		TemplatesFS: templates,
		StaticFS:    static,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}

// Command music-clusters runs the music cluster explorer dashboard.
//
// Usage:
//
//	music-clusters [-config file] [-env file] [serve|summary]
//
// serve (the default) starts the web dashboard; summary prints the cluster
// gallery as a terminal table and exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/justestif/go-music-cluster-explorer/internal/auth"
	"github.com/justestif/go-music-cluster-explorer/internal/catalog"
	"github.com/justestif/go-music-cluster-explorer/internal/clustering"
	"github.com/justestif/go-music-cluster-explorer/internal/config"
	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
	"github.com/justestif/go-music-cluster-explorer/internal/spotify"
	"github.com/justestif/go-music-cluster-explorer/internal/web"
	webfs "github.com/justestif/go-music-cluster-explorer/web"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("music-clusters", flag.ContinueOnError)
	configFile := flags.String("config", "", "config file (default: config.{yaml,toml,json} in ./config or .)")
	envFile := flags.String("env", ".env", "dotenv file loaded before reading the environment")
	if err := flags.Parse(args); err != nil {
		return err
	}

	command := "serve"
	if flags.NArg() > 0 {
		command = flags.Arg(0)
	}

	cfg, err := config.Load(config.Options{ConfigFile: *configFile, EnvFile: *envFile})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	switch command {
	case "serve":
		return serve(cfg, logger)
	case "summary":
		return summary(cfg, os.Stdout)
	default:
		return fmt.Errorf("unknown command %q (want serve or summary)", command)
	}
}

func serve(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	authenticator, err := auth.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret,
		auth.WithTokenURL(cfg.Spotify.TokenURL),
	)
	if err != nil {
		return fmt.Errorf("creating authenticator: %w", err)
	}

	tracks := spotify.NewCatalog(authenticator, spotify.CatalogConfig{
		APIURL:    cfg.Spotify.APIURL,
		Limit:     cfg.Search.Limit,
		MaxOffset: cfg.Search.MaxOffset,
	})

	// The dashboard reports a missing dataset per session; warn early as well.
	if _, err := os.Stat(cfg.Dataset.Path); err != nil {
		logger.Warn("dataset not readable", "path", cfg.Dataset.Path, "err", err)
	}

	// Create sub-filesystems for templates and static files
	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}

	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:       cfg.Server.Addr,
		SessionTTL: cfg.Session.TTL,
		LoadDataset: func() (*dataset.Dataset, error) {
			return dataset.Load(cfg.Dataset.Path)
		},
		Themes:      catalog.New(cfg.Themes),
		Catalog:     tracks,
		TemplatesFS: templates,
		StaticFS:    static,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}

func summary(cfg *config.Config, w io.Writer) error {
	ds, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return err
	}

	profiles, err := clustering.MoodProfiles(ds)
	if err != nil {
		return fmt.Errorf("profiling clusters: %w", err)
	}

	themes := catalog.New(cfg.Themes)
	names := make(map[int]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = themes.Lookup(p.ID).Name
	}

	var cohesion []clustering.Cohesion
	labels, err := ds.Clusters()
	if err == nil {
		var columns [][]float64
		if columns, err = ds.Features(dataset.FeatureColumns); err == nil {
			cohesion, err = clustering.MeasureCohesion(context.Background(), labels, columns)
		}
	}
	if err != nil {
		slog.Warn("cohesion unavailable", "err", err)
	}

	_, err = io.WriteString(w, clustering.FormatSummary(profiles, names, cohesion))
	return err
}

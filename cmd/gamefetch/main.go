// Command gamefetch copies pages of the RAWG catalog into the games file the
// recommender reads. It runs out of band and is not part of the server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"questlog/backend/internal/config"
	"questlog/backend/internal/ingest"
	"questlog/backend/internal/logging"
	"questlog/backend/internal/rawg"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Unable to load config: %v", err)
	}
	logging.Setup(cfg.LogLevel)

	startPage := flag.Int("start-page", 1, "first page to fetch")
	endPage := flag.Int("end-page", 10, "last page to fetch")
	pageSize := flag.Int("page-size", ingest.MaxPageSize, "games per page (max 40)")
	out := flag.String("out", cfg.GamesFile, "games file to merge into")
	flag.Parse()

	if cfg.RawgAPIKey == "" {
		logrus.Fatal("RAWG_API_KEY is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := rawg.NewClient(cfg.RawgBaseURL, cfg.RawgAPIKey, cfg.RawgTimeout)
	res, err := ingest.Run(ctx, client, ingest.Options{
		StartPage: *startPage,
		EndPage:   *endPage,
		PageSize:  *pageSize,
		Path:      *out,
	})
	if err != nil {
		logrus.WithError(err).Fatal("Error fetching games")
	}

	logrus.WithFields(logrus.Fields{"added": res.Added, "total": res.Total, "file": *out}).Info("Games file updated")
}

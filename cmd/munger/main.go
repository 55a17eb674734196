package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/actris-cloudnet/model-munger/internal/adapter/cloudnet"
	"github.com/actris-cloudnet/model-munger/internal/adapter/ecmwf"
	"github.com/actris-cloudnet/model-munger/internal/adapter/grib"
	httpadapter "github.com/actris-cloudnet/model-munger/internal/adapter/http"
	kafkaadapter "github.com/actris-cloudnet/model-munger/internal/adapter/kafka"
	"github.com/actris-cloudnet/model-munger/internal/adapter/netcdf"
	"github.com/actris-cloudnet/model-munger/internal/config"
	"github.com/actris-cloudnet/model-munger/internal/domain"
	"github.com/actris-cloudnet/model-munger/internal/observability"
	"github.com/actris-cloudnet/model-munger/internal/pipeline"
)

// version is stamped into every product file. Release builds override it
// with -ldflags "-X main.version=...".
var version = "0.0.0-dev"

// The products cover one civil day, so only the 00 UTC run is used: its
// lead hours 0 through 24 line up with the daily time axis.
const modelRun = 0

func main() {
	dateFlag := flag.String("date", "", "forecast date as YYYY-MM-DD (default today, UTC)")
	sitesFlag := flag.String("sites", "", "comma-separated site ids (default all portal sites)")
	submitFlag := flag.Bool("submit", false, "submit finished files to the data portal")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	date := domain.Today()
	if *dateFlag != "" {
		date, err = time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			logger.Error("invalid -date, want YYYY-MM-DD", "value", *dateFlag)
			os.Exit(1)
		}
	}
	siteIDs := splitIDs(*sitesFlag)

	portal := cloudnet.NewClient(cfg.CloudnetURL, cfg.CloudnetUsername, cfg.CloudnetPassword, cfg.CloudnetTimeout, logger)
	downloader := ecmwf.NewDownloader(cfg.ECMWFBaseURL, cfg.DownloadDir, cfg.DownloadTimeout, cfg.DownloadRetries, metrics, logger)
	reader := grib.NewReader(logger)
	writer := netcdf.NewWriter(cfg.OutputDir, version, logger)

	// The portal client doubles as the submitter (feature-flagged via -submit).
	var submitter pipeline.Submitter
	if *submitFlag {
		submitter = portal
		metrics.SubmitEnabled.Set(1)
	}

	var publisher pipeline.EventPublisher
	var eventWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		eventWriter = kafkaadapter.NewWriter(cfg, logger)
		publisher = eventWriter
		logger.Info("product events enabled", "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(portal, downloader, reader, writer, submitter, publisher, logger, metrics, cfg.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the observability server when a metrics address is configured.
	var srv *httpadapter.Server
	if cfg.MetricsAddr != "" {
		srv = httpadapter.NewServer(cfg.MetricsAddr, version, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	runErr := p.Run(ctx, date, modelRun, siteIDs)
	if runErr != nil {
		logger.Error("pipeline failed", "error", runErr)
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		cancel()
	}
	if eventWriter != nil {
		if err := eventWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	if runErr != nil {
		os.Exit(1)
	}
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

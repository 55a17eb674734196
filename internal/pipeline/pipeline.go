package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/actris-cloudnet/model-munger/internal/domain"
	"github.com/actris-cloudnet/model-munger/internal/observability"
)

// SiteLister resolves the measurement sites that model products are
// extracted for.
type SiteLister interface {
	GetSites(ctx context.Context) ([]domain.Site, error)
}

// ForecastDownloader fetches the forecast files for one model run and
// returns their local paths in lead-hour order.
type ForecastDownloader interface {
	Download(ctx context.Context, date time.Time, run int) ([]string, error)
}

// SnapshotReader decodes one forecast file into a snapshot of gridded
// fields.
type SnapshotReader interface {
	ReadSnapshot(path string) (*domain.Snapshot, error)
}

// ProfileWriter serializes one site's time series into a product file and
// returns its path.
type ProfileWriter interface {
	WriteSite(series *domain.SiteTimeSeries, date time.Time) (string, error)
}

// Submitter delivers a finished product file to the data portal.
type Submitter interface {
	Submit(ctx context.Context, path string, site domain.Site, date time.Time) (*domain.Submission, error)
}

// EventPublisher announces finished products to downstream consumers.
type EventPublisher interface {
	PublishBatch(ctx context.Context, events []domain.ProductEvent) error
}

const defaultWorkers = 4

// Pipeline orchestrates one model run: download the forecast files,
// assemble per-site profiles snapshot by snapshot, then write and
// optionally submit one product file per site.
type Pipeline struct {
	sites      SiteLister
	downloader ForecastDownloader
	reader     SnapshotReader
	writer     ProfileWriter

	// submitter and publisher are optional stages; nil disables them.
	submitter Submitter
	publisher EventPublisher

	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
	workers int
}

// New creates a Pipeline with the given stages and observability. Pass a
// nil submitter to skip data portal submission and a nil publisher to
// skip product events.
func New(s SiteLister, d ForecastDownloader, r SnapshotReader, w ProfileWriter, sub Submitter, pub EventPublisher, logger *slog.Logger, metrics *observability.Metrics, workers int) *Pipeline {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Pipeline{
		sites:      s,
		downloader: d,
		reader:     r,
		writer:     w,
		submitter:  sub,
		publisher:  pub,
		logger:     logger,
		metrics:    metrics,
		workers:    workers,
	}
}

// CheckReadiness returns nil once the pipeline has completed a run, or an
// error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Run executes one extraction run for the given date and model run hour.
// siteIDs narrows the run to a subset of the portal's sites; an empty
// slice means all of them. Assembly errors are fatal and abort the run
// before any product file is written.
func (p *Pipeline) Run(ctx context.Context, date time.Time, run int, siteIDs []string) (err error) {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)
	defer func() {
		p.metrics.RunDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			p.metrics.RunErrors.Inc()
		}
	}()

	p.logger.Info("pipeline started",
		"date", date.Format("2006-01-02"),
		"run", run,
		"submit", p.submitter != nil)

	sites, err := p.selectSites(ctx, siteIDs)
	if err != nil {
		return err
	}
	if len(sites) == 0 {
		p.logger.Warn("no sites to process")
		return nil
	}

	paths, err := p.downloader.Download(ctx, date, run)
	if err != nil {
		return fmt.Errorf("download forecast: %w", err)
	}

	series, err := p.assemble(ctx, paths, date, sites)
	if err != nil {
		return err
	}

	events, err := p.produceAll(ctx, series, date)
	if err != nil {
		return err
	}

	if p.publisher != nil {
		if err := p.publisher.PublishBatch(ctx, events); err != nil {
			return fmt.Errorf("publish events: %w", err)
		}
	}

	p.ready.Store(true)
	p.logger.Info("pipeline finished",
		"sites", len(series),
		"files", len(paths),
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// selectSites lists the portal's sites and applies the optional id filter.
// Requesting an unknown id is an error rather than a silent no-op.
func (p *Pipeline) selectSites(ctx context.Context, ids []string) ([]domain.Site, error) {
	sites, err := p.sites.GetSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	if len(ids) == 0 {
		return sites, nil
	}

	byID := make(map[string]domain.Site, len(sites))
	for _, s := range sites {
		byID[s.ID] = s
	}
	selected := make([]domain.Site, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown site %q", id)
		}
		selected = append(selected, s)
	}
	return selected, nil
}

// assemble decodes each forecast file in lead-hour order and folds it into
// the per-site time series.
func (p *Pipeline) assemble(ctx context.Context, paths []string, date time.Time, sites []domain.Site) ([]*domain.SiteTimeSeries, error) {
	assembler := domain.NewAssembler(domain.DefaultCatalogue(), date, sites)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		snap, err := p.reader.ReadSnapshot(path)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
		p.metrics.SnapshotsDecoded.Inc()
		p.metrics.FieldsDecoded.Add(float64(len(snap.Fields)))

		if err := assembler.ProcessSnapshot(snap); err != nil {
			return nil, fmt.Errorf("process %s: %w", filepath.Base(path), err)
		}
		p.metrics.ProfilesAssembled.Add(float64(len(sites)))
	}

	return assembler.Series(), nil
}

// produceAll writes and optionally submits each site's product file, with
// bounded parallelism. The returned events follow the site order of the
// input series.
func (p *Pipeline) produceAll(ctx context.Context, series []*domain.SiteTimeSeries, date time.Time) ([]domain.ProductEvent, error) {
	events := make([]domain.ProductEvent, len(series))

	var eg errgroup.Group
	sem := make(chan struct{}, p.workers)
	for i, s := range series {
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			ev, err := p.produceSite(ctx, s, date)
			if err != nil {
				return err
			}
			events[i] = ev
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return events, nil
}

// produceSite writes one site's product file and, when submission is
// enabled, delivers it to the data portal.
func (p *Pipeline) produceSite(ctx context.Context, series *domain.SiteTimeSeries, date time.Time) (domain.ProductEvent, error) {
	path, err := p.writer.WriteSite(series, date)
	if err != nil {
		return domain.ProductEvent{}, fmt.Errorf("write site %s: %w", series.Site.ID, err)
	}
	p.metrics.FilesWritten.Inc()

	if p.submitter == nil {
		return domain.NewProductEvent(series.Site.ID, date, filepath.Base(path), "", false), nil
	}

	submitStart := time.Now()
	sub, err := p.submitter.Submit(ctx, path, series.Site, date)
	p.metrics.SubmitDuration.Observe(time.Since(submitStart).Seconds())
	if err != nil {
		p.metrics.SubmitRequests.WithLabelValues("error").Inc()
		return domain.ProductEvent{}, fmt.Errorf("submit site %s: %w", series.Site.ID, err)
	}
	outcome := "created"
	if sub.Duplicate {
		outcome = "duplicate"
	}
	p.metrics.SubmitRequests.WithLabelValues(outcome).Inc()

	return domain.NewProductEvent(series.Site.ID, date, filepath.Base(path), sub.Checksum, true), nil
}

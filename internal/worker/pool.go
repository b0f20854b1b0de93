// Package worker provides background feature import for catalogue tracks.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/acoustic-print/internal/core/ports"
	"github.com/ewilliams-labs/acoustic-print/internal/logging"
	"github.com/ewilliams-labs/acoustic-print/internal/metrics"
)

// Job represents a background import task for one track.
type Job struct {
	TrackID    int64
	ExternalID string
	PreviewURL string
}

// Pool manages background workers for feature import jobs.
type Pool struct {
	provider ports.FeatureProvider
	store    ports.FeatureStore
	workers  int
	jobs     chan Job
	wg       sync.WaitGroup
	stopOnce sync.Once
	log      zerolog.Logger
}

// NewPool creates a worker pool with the given worker count and queue size.
// provider may be nil, in which case only preview analysis runs.
func NewPool(provider ports.FeatureProvider, store ports.FeatureStore, workers int, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		provider: provider,
		store:    store,
		workers:  workers,
		jobs:     make(chan Job, queueSize),
		log:      logging.Component("worker"),
	}
}

// Start launches the worker goroutines. Jobs run under ctx.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(ctx, job)
			}
		}()
	}
}

// Stop closes the queue and waits for queued jobs to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.jobs) })
	p.wg.Wait()
}

// Submit queues a job without blocking. It reports false when the queue is
// full and the job was dropped.
func (p *Pool) Submit(job Job) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		p.log.Warn().Int64("track_id", job.TrackID).Msg("queue full, dropping job")
		metrics.RecordImport("dropped")
		return false
	}
}

// Enqueue queues a job, waiting for room in the queue.
func (p *Pool) Enqueue(ctx context.Context, job Job) error {
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnqueueMissing queues every track the store reports as missing features
// and returns how many were queued.
func (p *Pool) EnqueueMissing(ctx context.Context) (int, error) {
	tracks, err := p.store.ListTracksMissingFeatures(ctx)
	if err != nil {
		return 0, err
	}
	for i, t := range tracks {
		if err := p.Enqueue(ctx, Job{TrackID: t.ID, ExternalID: t.ExternalID, PreviewURL: t.PreviewURL}); err != nil {
			return i, err
		}
	}
	return len(tracks), nil
}

// SubmitMissing queues tracks missing features without blocking and
// reports how many were queued and dropped.
func (p *Pool) SubmitMissing(ctx context.Context) (queued int, dropped int, err error) {
	tracks, err := p.store.ListTracksMissingFeatures(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, t := range tracks {
		if p.Submit(Job{TrackID: t.ID, ExternalID: t.ExternalID, PreviewURL: t.PreviewURL}) {
			queued++
		} else {
			dropped++
		}
	}
	return queued, dropped, nil
}

func (p *Pool) processJob(ctx context.Context, job Job) {
	log := p.log.With().Int64("track_id", job.TrackID).Logger()

	if job.ExternalID != "" && p.provider != nil {
		features, err := p.provider.GetAudioFeatures(ctx, job.ExternalID)
		switch {
		case err == nil:
			if err := features.Validate(); err != nil {
				log.Warn().Err(err).Msg("provider returned invalid features")
				metrics.RecordImport("failed")
				return
			}
			if err := p.store.UpdateTrackFeatures(ctx, job.TrackID, features); err != nil {
				log.Error().Err(err).Msg("failed to store features")
				metrics.RecordImport("failed")
				return
			}
			log.Info().Msg("imported features")
			metrics.RecordImport("imported")
			return
		case errors.Is(err, ports.ErrFeaturesUnavailable):
			log.Debug().Msg("features unavailable, trying preview")
		default:
			log.Warn().Err(err).Msg("failed to fetch features")
			metrics.RecordImport("failed")
			return
		}
	}

	if job.PreviewURL == "" {
		log.Warn().Msg("no preview URL, skipping analysis")
		metrics.RecordImport("unavailable")
		return
	}

	energy, err := AnalyzePreviewFunc(ctx, job.PreviewURL)
	if err != nil {
		log.Warn().Err(err).Msg("preview analysis failed")
		metrics.RecordImport("failed")
		return
	}
	if err := p.store.UpdateTrackEnergy(ctx, job.TrackID, energy); err != nil {
		log.Error().Err(err).Msg("failed to store energy estimate")
		metrics.RecordImport("failed")
		return
	}
	log.Info().Float64("energy", energy).Msg("estimated energy from preview")
	metrics.RecordImport("estimated")
}

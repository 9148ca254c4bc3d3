package cmd

import (
	"context"
	"fmt"

	"chordprep/cache"
	"chordprep/core/audio"
	"chordprep/core/dataset"
	"chordprep/db"
	"chordprep/logger"
	"chordprep/repository"
)

// pipeline holds the resources a command opened and must release.
type pipeline struct {
	store   cache.Store
	builder *dataset.Builder
	closers []func() error
}

func (p *pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			logger.Warn("failed to release resource", logger.ErrorField(err))
		}
	}
}

func newLoader() (audio.Loader, error) {
	switch cfg.Features.Loader {
	case "wav":
		return audio.NewWavLoader(cfg.Features.SampleRate), nil
	case "ffmpeg":
		return audio.NewFFmpegLoader(cfg.Features.FFmpegPath, cfg.Features.SampleRate), nil
	default:
		return nil, fmt.Errorf("unknown loader %q", cfg.Features.Loader)
	}
}

func buildOptions() dataset.Options {
	return dataset.Options{
		AudioDir:         cfg.AudioPath(),
		AnnotationDir:    cfg.AnnotationPath(),
		OverSamplingRate: cfg.Features.OverSamplingRate,
		NFFT:             cfg.Features.NFFT,
		SampleRate:       cfg.Features.SampleRate,
		LoaderKind:       cfg.Features.Loader,
		Workers:          cfg.Build.Workers,
		Strict:           cfg.Build.Strict,
		Progress:         cfg.Build.Progress,
	}
}

// openPipeline wires the configured cache backend, loader and, when enabled,
// the track catalog into a dataset builder.
func openPipeline(ctx context.Context) (*pipeline, error) {
	p := &pipeline{}

	store, err := cache.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}
	p.store = store
	p.closers = append(p.closers, store.Close)

	loader, err := newLoader()
	if err != nil {
		p.Close()
		return nil, err
	}
	b := dataset.NewBuilder(buildOptions(), cache.New(store))
	b.Loader = loader

	if cfg.Build.RecordCatalog {
		if err := db.ConnectGormDB(cfg); err != nil {
			p.Close()
			return nil, err
		}
		p.closers = append(p.closers, db.CloseGormDB)
		b.Recorder = repository.NewGormTrackRepository(db.GormDB)
	}

	p.builder = b
	return p, nil
}

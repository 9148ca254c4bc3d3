package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"chordprep/cache"
	"chordprep/core/annotation"
	"chordprep/core/audio"
	"chordprep/logger"
	"chordprep/model"

	"github.com/google/uuid"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// progressEvery is how many aligned frames pass between debug progress lines.
const progressEvery = 50

// Options are the corpus location and extraction parameters of a build.
type Options struct {
	AudioDir         string
	AnnotationDir    string
	OverSamplingRate float64
	NFFT             int
	// SampleRate is the rate every waveform is loaded at. The default wav
	// loader rejects files at any other rate.
	SampleRate int
	LoaderKind string
	Workers    int
	Strict     bool
	Progress   bool
}

// Recorder persists the per-track report of a build.
type Recorder interface {
	RecordTrack(ctx context.Context, rec *model.TrackRecord) error
}

// Result is everything a build produced.
type Result struct {
	RunID       string
	Fingerprint string
	Cached      bool
	Dataset     *model.Dataset
	Tracks      []model.TrackStats
}

// Builder assembles the training set from a corpus. The audio and annotation
// stages are fields so callers can swap implementations.
type Builder struct {
	opts Options

	Loader    audio.Loader
	Tempo     audio.TempoEstimator
	Extractor audio.Extractor
	Reader    *annotation.Reader
	Cache     *cache.DatasetCache
	Recorder  Recorder
	// Output receives the progress bar. Defaults to stdout.
	Output io.Writer
}

// NewBuilder returns a Builder with the wav loader, the onset tempo estimator,
// the STFT extractor and the JAMS chord reader.
func NewBuilder(opts Options, c *cache.DatasetCache) *Builder {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Builder{
		opts:      opts,
		Loader:    audio.NewWavLoader(opts.SampleRate),
		Tempo:     audio.NewOnsetTempo(),
		Extractor: audio.NewSTFT(),
		Reader:    annotation.NewReader(),
		Cache:     c,
		Output:    os.Stdout,
	}
}

// Build returns the dataset, from cache when the corpus and parameters are unchanged.
func (b *Builder) Build(ctx context.Context) (*model.Dataset, error) {
	res, err := b.Run(ctx)
	if err != nil {
		return nil, err
	}
	return res.Dataset, nil
}

// Fingerprint discovers the corpus and computes its cache key.
func (b *Builder) Fingerprint() (*Corpus, string, error) {
	corpus, err := Discover(b.opts.AudioDir, b.opts.AnnotationDir)
	if err != nil {
		return nil, "", err
	}
	fp, err := cache.Fingerprint(corpus.Files(), cache.Params{
		OverSamplingRate: b.opts.OverSamplingRate,
		NFFT:             b.opts.NFFT,
		SampleRate:       b.opts.SampleRate,
		Loader:           b.opts.LoaderKind,
		Namespace:        b.Reader.Namespace,
		Preferred:        b.Reader.Preferred,
	})
	if err != nil {
		return nil, "", err
	}
	return corpus, fp, nil
}

// Run performs a build and reports per-track statistics.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	corpus, fp, err := b.Fingerprint()
	if err != nil {
		return nil, err
	}
	res := &Result{RunID: uuid.New().String(), Fingerprint: fp}

	if b.Cache != nil {
		if ds, ok := b.Cache.Load(ctx, fp); ok {
			res.Cached = true
			res.Dataset = ds
			return res, nil
		}
	}

	idx, indexErrs := annotation.IndexFiles(b.Reader, corpus.Annotations)
	logger.Info("label index built",
		logger.Int("files", len(corpus.Annotations)),
		logger.Int("unreadable", len(indexErrs)),
		logger.Int("labels", idx.Size()))

	outcomes, err := b.processAll(ctx, corpus.Tracks, idx)
	if err != nil {
		return nil, err
	}

	ds := &model.Dataset{Classes: idx.Labels()}
	failed := 0
	for _, o := range outcomes {
		res.Tracks = append(res.Tracks, o.stats)
		if o.err != nil {
			failed++
			continue
		}
		for _, ex := range o.examples {
			ds.Append(ex)
		}
	}
	if failed == len(outcomes) {
		return nil, fmt.Errorf("%w: %d tracks", ErrAllTracksFailed, failed)
	}
	if err := ds.Check(); err != nil {
		return nil, fmt.Errorf("assembled dataset: %w", err)
	}
	res.Dataset = ds

	b.record(ctx, res)

	if b.Cache != nil {
		if err := b.Cache.Save(ctx, fp, ds); err != nil {
			return nil, err
		}
	}

	logger.Info("dataset built",
		logger.String("run", res.RunID),
		logger.Int("tracks", len(outcomes)),
		logger.Int("failed", failed),
		logger.Int("examples", ds.Len()),
		logger.Int("classes", len(ds.Classes)),
		logger.Duration("elapsed", time.Since(start)))
	return res, nil
}

type outcome struct {
	examples []model.TrainingExample
	stats    model.TrackStats
	err      error
}

// processAll runs the per-track pass on a worker pool. Outcomes are stored by
// track position so the merged dataset does not depend on scheduling.
func (b *Builder) processAll(ctx context.Context, tracks []model.Track, idx *annotation.Index) ([]outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		p   *mpb.Progress
		bar *mpb.Bar
	)
	if b.opts.Progress {
		p = mpb.NewWithContext(ctx, mpb.WithWidth(64), mpb.WithOutput(b.Output))
		bar = p.AddBar(int64(len(tracks)),
			mpb.PrependDecorators(
				decor.Name("Aligning: "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
				decor.EwmaETA(decor.ET_STYLE_GO, 60),
			),
		)
	}

	outcomes := make([]outcome, len(tracks))
	jobs := make(chan int, len(tracks))
	for i := range tracks {
		jobs <- i
	}
	close(jobs)

	var (
		wg        sync.WaitGroup
		once      sync.Once
		strictErr error
	)
	for w := 0; w < b.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					outcomes[i] = outcome{stats: model.TrackStats{TrackID: tracks[i].ID}, err: ctx.Err()}
					continue
				}
				started := time.Now()
				o := b.processTrack(tracks[i], idx)
				o.stats.Elapsed = time.Since(started)
				outcomes[i] = o
				if bar != nil {
					bar.EwmaIncrement(o.stats.Elapsed)
				}

				if o.err == nil {
					continue
				}
				logger.Error("track failed",
					logger.String("track", tracks[i].ID),
					logger.ErrorField(o.err))
				if b.opts.Strict {
					once.Do(func() {
						strictErr = o.err
						cancel()
					})
				}
			}
		}()
	}
	wg.Wait()

	if bar != nil {
		if strictErr != nil || ctx.Err() != nil {
			bar.Abort(false)
		}
		p.Wait()
	}

	if strictErr != nil {
		return nil, strictErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// processTrack extracts, aligns and encodes one track. idx is only read.
func (b *Builder) processTrack(t model.Track, idx *annotation.Index) outcome {
	o := outcome{stats: model.TrackStats{TrackID: t.ID}}
	fail := func(err error) outcome {
		o.err = &TrackError{TrackID: t.ID, Err: err}
		o.stats.Err = err.Error()
		return o
	}

	w, err := b.Loader.Load(t.WaveformPath)
	if err != nil {
		return fail(err)
	}
	tempo, err := b.Tempo.EstimateTempo(w)
	if err != nil {
		return fail(err)
	}
	o.stats.Tempo = tempo

	hop, err := audio.ComputeHopLength(w.SampleRate, tempo, b.opts.OverSamplingRate)
	if err != nil {
		return fail(err)
	}
	o.stats.HopLength = hop

	frames, err := b.Extractor.Extract(w.Samples, w.SampleRate, b.opts.NFFT, hop)
	if err != nil {
		return fail(err)
	}
	o.stats.Frames = len(frames)

	intervals, err := b.Reader.Read(t.AnnotationPath)
	if err != nil {
		return fail(err)
	}

	aligner := annotation.NewAligner(intervals)
	for i, f := range frames {
		if i%progressEvery == 0 {
			logger.Debug("aligning frames",
				logger.String("track", t.ID),
				logger.Int("frame", i),
				logger.Int("of", len(frames)))
		}
		label, ok := aligner.Resolve(f.Timestamp)
		if !ok {
			o.stats.Unlabeled++
			continue
		}
		id, ok := idx.Lookup(label)
		if !ok {
			o.stats.Unknown++
			continue
		}
		o.examples = append(o.examples, model.TrainingExample{Vector: f.Vector, ClassID: id})
	}
	o.stats.Kept = len(o.examples)

	logger.Info("track aligned",
		logger.String("track", t.ID),
		logger.Float64("tempo", tempo),
		logger.Int("hop", hop),
		logger.Int("frames", o.stats.Frames),
		logger.Int("kept", o.stats.Kept),
		logger.Int("unlabeled", o.stats.Unlabeled),
		logger.Int("unknown", o.stats.Unknown))
	return o
}

// record writes the catalog rows. Catalog failures never fail the build.
func (b *Builder) record(ctx context.Context, res *Result) {
	if b.Recorder == nil {
		return
	}
	for _, s := range res.Tracks {
		err := b.Recorder.RecordTrack(ctx, model.NewTrackRecord(res.RunID, res.Fingerprint, s))
		if err != nil {
			logger.Warn("failed to record track",
				logger.String("track", s.TrackID),
				logger.ErrorField(err))
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

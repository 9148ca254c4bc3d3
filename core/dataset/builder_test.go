package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"chordprep/cache"
	"chordprep/core/annotation"
	"chordprep/core/audio"
	"chordprep/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 22050

// stubLoader serves synthetic waveforms by path and fails for paths listed in broken.
type stubLoader struct {
	seconds float64
	broken  map[string]bool
}

func (l stubLoader) Load(path string) (model.Waveform, error) {
	if l.broken[filepath.Base(path)] {
		return model.Waveform{}, &audio.AudioLoadError{Path: path, Err: errors.New("truncated")}
	}
	n := int(l.seconds * testRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = float64(i%100) / 100
	}
	return model.Waveform{Samples: samples, SampleRate: testRate}, nil
}

type fixedTempo float64

func (f fixedTempo) EstimateTempo(model.Waveform) (float64, error) { return float64(f), nil }

// countingExtractor wraps the real STFT and counts invocations.
type countingExtractor struct {
	calls atomic.Int32
	inner audio.Extractor
}

func (c *countingExtractor) Extract(samples []float64, sampleRate, nFFT, hop int) ([]model.FeatureFrame, error) {
	c.calls.Add(1)
	return c.inner.Extract(samples, sampleRate, nFFT, hop)
}

type memRecorder struct {
	mu   sync.Mutex
	rows []*model.TrackRecord
}

func (m *memRecorder) RecordTrack(_ context.Context, rec *model.TrackRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rec)
	return nil
}

type corpusDirs struct {
	audio, annotations, root string
}

func newCorpus(t *testing.T) corpusDirs {
	t.Helper()
	root := t.TempDir()
	c := corpusDirs{
		root:        root,
		audio:       filepath.Join(root, "musics"),
		annotations: filepath.Join(root, "annotations"),
	}
	require.NoError(t, os.MkdirAll(c.audio, 0755))
	require.NoError(t, os.MkdirAll(c.annotations, 0755))
	return c
}

// addTrack writes a placeholder waveform and a single-interval chord annotation.
func (c corpusDirs) addTrack(t *testing.T, id, label string, seconds float64) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(c.audio, id+WaveSuffix), []byte("RIFF"), 0644))
	doc := fmt.Sprintf(`{"annotations":[{"namespace":"chord","data":[{"time":0,"duration":%v,"value":%q}]}]}`, seconds, label)
	require.NoError(t, os.WriteFile(filepath.Join(c.annotations, id+annotation.Ext), []byte(doc), 0644))
}

func (c corpusDirs) options() Options {
	return Options{
		AudioDir:         c.audio,
		AnnotationDir:    c.annotations,
		OverSamplingRate: 48,
		NFFT:             128,
		SampleRate:       testRate,
		LoaderKind:       "stub",
	}
}

func newTestBuilder(opts Options, dc *cache.DatasetCache) (*Builder, *countingExtractor) {
	b := NewBuilder(opts, dc)
	ext := &countingExtractor{inner: audio.NewSTFT()}
	b.Loader = stubLoader{seconds: 10}
	b.Tempo = fixedTempo(2.0)
	b.Extractor = ext
	return b, ext
}

func TestBuildSingleTrackKeepsEveryFrame(t *testing.T) {
	c := newCorpus(t)
	c.addTrack(t, "00_BN1-129-Eb_comp", "A", 10)

	b, _ := newTestBuilder(c.options(), nil)
	res, err := b.Run(context.Background())
	require.NoError(t, err)

	w, _ := stubLoader{seconds: 10}.Load("x")
	frames, err := audio.NewSTFT().Extract(w.Samples, testRate, 128, 230)
	require.NoError(t, err)

	ds := res.Dataset
	assert := assert.New(t)
	assert.Equal([]string{"A"}, ds.Classes)
	assert.Equal(len(frames), ds.Len())
	assert.Len(ds.Features, ds.Len())
	for _, l := range ds.Labels {
		assert.Equal(0, l)
	}
	for _, v := range ds.Features {
		assert.Len(v, 65)
	}

	require.Len(t, res.Tracks, 1)
	s := res.Tracks[0]
	assert.Equal(230, s.HopLength)
	assert.Equal(2.0, s.Tempo)
	assert.Equal(len(frames), s.Kept)
	assert.Zero(s.Unlabeled)
	assert.Zero(s.Unknown)
	assert.False(res.Cached)
	assert.NotEmpty(res.RunID)
}

func TestBuildCacheMissThenHit(t *testing.T) {
	c := newCorpus(t)
	c.addTrack(t, "a", "C:maj", 10)
	dc := cache.New(cache.NewFileStore(filepath.Join(c.root, "xy.gob")))

	b, ext := newTestBuilder(c.options(), dc)
	first, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.EqualValues(t, 1, ext.calls.Load())

	second, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.EqualValues(t, 1, ext.calls.Load(), "a cache hit must not extract again")
	assert.Equal(t, first.Dataset, second.Dataset)
}

func TestBuildParameterChangeInvalidatesCache(t *testing.T) {
	c := newCorpus(t)
	c.addTrack(t, "a", "C:maj", 10)
	dc := cache.New(cache.NewFileStore(filepath.Join(c.root, "xy.gob")))

	b, ext := newTestBuilder(c.options(), dc)
	_, err := b.Run(context.Background())
	require.NoError(t, err)

	opts := c.options()
	opts.NFFT = 256
	b2, ext2 := newTestBuilder(opts, dc)
	res, err := b2.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.EqualValues(t, 1, ext.calls.Load())
	assert.EqualValues(t, 1, ext2.calls.Load())
	assert.Len(t, res.Dataset.Features[0], 129)
}

func TestBuildMergesTracksInOrderWithWorkers(t *testing.T) {
	c := newCorpus(t)
	c.addTrack(t, "a", "A", 10)
	c.addTrack(t, "b", "B", 10)
	c.addTrack(t, "c", "C", 10)

	opts := c.options()
	opts.Workers = 3
	b, ext := newTestBuilder(opts, nil)
	ds, err := b.Build(context.Background())
	require.NoError(t, err)
	require.NoError(t, ds.Check())

	assert.Equal(t, []string{"A", "B", "C"}, ds.Classes)
	assert.EqualValues(t, 3, ext.calls.Load())
	for i := 1; i < ds.Len(); i++ {
		assert.LessOrEqual(t, ds.Labels[i-1], ds.Labels[i], "row %d", i)
	}
}

func TestBuildSkipsFailingTrack(t *testing.T) {
	c := newCorpus(t)
	c.addTrack(t, "good", "A", 10)
	c.addTrack(t, "bad", "B", 10)

	b, _ := newTestBuilder(c.options(), nil)
	b.Loader = stubLoader{seconds: 10, broken: map[string]bool{"bad" + WaveSuffix: true}}
	rec := &memRecorder{}
	b.Recorder = rec

	res, err := b.Run(context.Background())
	require.NoError(t, err)

	// label ids come from the full annotation corpus, the failing track included
	assert.Equal(t, []string{"B", "A"}, res.Dataset.Classes)
	for _, l := range res.Dataset.Labels {
		assert.Equal(t, 1, l)
	}

	require.Len(t, res.Tracks, 2)
	assert.Equal(t, "bad", res.Tracks[0].TrackID)
	assert.Contains(t, res.Tracks[0].Err, "truncated")
	assert.Empty(t, res.Tracks[1].Err)

	require.Len(t, rec.rows, 2)
	assert.Equal(t, res.RunID, rec.rows[0].RunID)
	assert.Equal(t, res.Fingerprint, rec.rows[1].Fingerprint)
}

func TestBuildStrictAbortsOnFailure(t *testing.T) {
	c := newCorpus(t)
	c.addTrack(t, "good", "A", 10)
	c.addTrack(t, "bad", "B", 10)

	opts := c.options()
	opts.Strict = true
	b, _ := newTestBuilder(opts, nil)
	b.Loader = stubLoader{seconds: 10, broken: map[string]bool{"bad" + WaveSuffix: true}}

	_, err := b.Run(context.Background())
	var te *TrackError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "bad", te.TrackID)
	assert.ErrorIs(t, err, audio.ErrAudioLoad)
}

func TestBuildAllTracksFailing(t *testing.T) {
	c := newCorpus(t)
	c.addTrack(t, "a", "A", 10)

	b, _ := newTestBuilder(c.options(), nil)
	b.Tempo = fixedTempo(0)

	_, err := b.Run(context.Background())
	assert.ErrorIs(t, err, ErrAllTracksFailed)
}

func TestBuildDegenerateTempoIsTrackFatal(t *testing.T) {
	b, _ := newTestBuilder(Options{OverSamplingRate: 48, NFFT: 128}, nil)
	b.Tempo = fixedTempo(0)

	o := b.processTrack(model.Track{ID: "a", WaveformPath: "a", AnnotationPath: "a"}, annotation.NewIndex())
	assert.ErrorIs(t, o.err, audio.ErrDegenerateInput)
	assert.Zero(t, o.stats.Frames)
}

func TestProcessTrackCountsSkippedFrames(t *testing.T) {
	c := newCorpus(t)
	// annotation covers only the first half and uses a label the index lacks
	c.addTrack(t, "a", "X", 5)

	b, _ := newTestBuilder(c.options(), nil)
	corpus, err := Discover(c.audio, c.annotations)
	require.NoError(t, err)

	idx := annotation.NewIndex()
	idx.Encode("Y")
	o := b.processTrack(corpus.Tracks[0], idx)
	require.NoError(t, o.err)

	assert.Zero(t, o.stats.Kept)
	assert.Positive(t, o.stats.Unknown)
	assert.Positive(t, o.stats.Unlabeled)
	assert.Equal(t, o.stats.Frames, o.stats.Unknown+o.stats.Unlabeled)
}

func TestBuildCancelled(t *testing.T) {
	c := newCorpus(t)
	c.addTrack(t, "a", "A", 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b, _ := newTestBuilder(c.options(), nil)
	_, err := b.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscoverPairsByStem(t *testing.T) {
	c := newCorpus(t)
	c.addTrack(t, "b", "A", 1)
	c.addTrack(t, "a", "A", 1)
	// waveform without annotation and a stray file
	require.NoError(t, os.WriteFile(filepath.Join(c.audio, "lonely"+WaveSuffix), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(c.audio, "a_mic.wav"), nil, 0644))
	// annotation without waveform still feeds the index
	require.NoError(t, os.WriteFile(filepath.Join(c.annotations, "z.jams"), []byte("{}"), 0644))

	corpus, err := Discover(c.audio, c.annotations)
	require.NoError(t, err)

	require.Len(t, corpus.Tracks, 2)
	assert.Equal(t, "a", corpus.Tracks[0].ID)
	assert.Equal(t, "b", corpus.Tracks[1].ID)
	assert.Len(t, corpus.Annotations, 3)
	assert.Len(t, corpus.Files(), 5)
}

func TestDiscoverEmptyCorpus(t *testing.T) {
	c := newCorpus(t)
	_, err := Discover(c.audio, c.annotations)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

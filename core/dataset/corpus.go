package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"chordprep/core/annotation"
	"chordprep/logger"
	"chordprep/model"
)

// WaveSuffix names the hexaphonic pickup recordings the corpus is built from.
const WaveSuffix = "_hex.wav"

// Corpus is the result of scanning the waveform and annotation directories.
type Corpus struct {
	Tracks []model.Track
	// Annotations lists every annotation file, paired or not. All of them feed
	// the label index.
	Annotations []string
}

// Files returns every path whose content shapes the dataset.
func (c *Corpus) Files() []string {
	files := make([]string, 0, len(c.Tracks)+len(c.Annotations))
	for _, t := range c.Tracks {
		files = append(files, t.WaveformPath)
	}
	return append(files, c.Annotations...)
}

// Discover pairs <id>_hex.wav in audioDir with <id>.jams in annotationDir.
// Tracks come back sorted by id.
func Discover(audioDir, annotationDir string) (*Corpus, error) {
	entries, err := os.ReadDir(audioDir)
	if err != nil {
		return nil, fmt.Errorf("read audio directory: %w", err)
	}
	annotations, err := annotation.List(annotationDir)
	if err != nil {
		return nil, fmt.Errorf("read annotation directory: %w", err)
	}

	c := &Corpus{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, WaveSuffix) {
			continue
		}
		id := strings.TrimSuffix(name, WaveSuffix)
		ann, ok := annotations[id]
		if !ok {
			logger.Warn("waveform without annotation, skipping",
				logger.String("track", id))
			continue
		}
		c.Tracks = append(c.Tracks, model.Track{
			ID:             id,
			WaveformPath:   filepath.Join(audioDir, name),
			AnnotationPath: ann,
		})
	}
	sort.Slice(c.Tracks, func(i, j int) bool { return c.Tracks[i].ID < c.Tracks[j].ID })

	for _, p := range annotations {
		c.Annotations = append(c.Annotations, p)
	}
	sort.Strings(c.Annotations)

	if len(c.Tracks) == 0 {
		return nil, ErrEmptyCorpus
	}
	return c, nil
}

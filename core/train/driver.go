package train

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chordprep/cache"
	"chordprep/logger"
	"chordprep/model"
)

const artifactVersion = 1

// Model predicts a class id for one feature vector.
type Model interface {
	Predict(vector []float64) int
}

// Classifier fits a Model on a dense feature matrix and one class id per row.
type Classifier interface {
	Fit(features [][]float64, labels []int) (Model, error)
}

// Uploader stores an object remotely. storage.MinioClient satisfies it.
type Uploader interface {
	PutObject(ctx context.Context, name string, data []byte, contentType string) error
}

// Artifact is the persisted model. Concrete Model types must be registered
// with gob by their package.
type Artifact struct {
	Version   int
	CreatedAt time.Time
	Classes   []string
	Examples  int
	Model     Model
}

// Label names the class predicted for vector.
func (a *Artifact) Label(vector []float64) string {
	id := a.Model.Predict(vector)
	if id < 0 || id >= len(a.Classes) {
		return ""
	}
	return a.Classes[id]
}

// Driver fits a classifier on a dataset and stores the resulting model.
type Driver struct {
	Path     string
	Uploader Uploader // optional
}

func NewDriver(path string, up Uploader) *Driver {
	return &Driver{Path: path, Uploader: up}
}

// Validate checks that ds can be handed to a classifier.
func Validate(ds *model.Dataset) error {
	if ds == nil || len(ds.Features) == 0 {
		return ErrEmptyDataset
	}
	if err := ds.Check(); err != nil {
		return fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	dim := len(ds.Features[0])
	for i, row := range ds.Features {
		if len(row) != dim {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrShapeMismatch, i, len(row), dim)
		}
	}
	return nil
}

// Train fits clf on ds and writes the model artifact.
func (d *Driver) Train(ctx context.Context, ds *model.Dataset, clf Classifier) (*Artifact, error) {
	if err := Validate(ds); err != nil {
		return nil, err
	}

	start := time.Now()
	logger.Info("fitting classifier",
		logger.Int("examples", ds.Len()),
		logger.Int("features", len(ds.Features[0])),
		logger.Int("classes", len(ds.Classes)))

	m, err := clf.Fit(ds.Features, ds.Labels)
	if err != nil {
		return nil, fmt.Errorf("fit classifier: %w", err)
	}
	logger.Info("classifier fitted", logger.Duration("elapsed", time.Since(start)))

	art := &Artifact{
		Version:   artifactVersion,
		CreatedAt: time.Now().UTC(),
		Classes:   ds.Classes,
		Examples:  ds.Len(),
		Model:     m,
	}
	if err := d.save(ctx, art); err != nil {
		return nil, err
	}
	return art, nil
}

func (d *Driver) save(ctx context.Context, art *Artifact) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(art); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := cache.WriteFileAtomic(d.Path, buf.Bytes()); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	logger.Info("model saved",
		logger.String("path", d.Path),
		logger.Int("bytes", buf.Len()))

	if d.Uploader == nil {
		return nil
	}
	name := "models/" + filepath.Base(d.Path)
	if err := d.Uploader.PutObject(ctx, name, buf.Bytes(), "application/octet-stream"); err != nil {
		return fmt.Errorf("upload model: %w", err)
	}
	logger.Info("model uploaded", logger.String("object", name))
	return nil
}

// LoadArtifact reads a model written by Train.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var art Artifact
	if err := gob.NewDecoder(f).Decode(&art); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if art.Version != artifactVersion {
		return nil, fmt.Errorf("model %s has version %d, want %d", path, art.Version, artifactVersion)
	}
	return &art, nil
}

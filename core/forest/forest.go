package forest

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"chordprep/core/train"
	"chordprep/logger"
)

func init() {
	gob.Register(&Forest{})
}

// Params configures the ensemble. Zero values pick the usual defaults:
// 100 trees, unlimited depth, leaves of one sample, sqrt(d) candidate features
// per split and one fitting goroutine per CPU.
type Params struct {
	Trees       int
	MaxDepth    int
	MinLeaf     int
	MaxFeatures int
	Seed        int64
	Workers     int
}

// RandomForest is a Classifier that bags Gini CART trees.
type RandomForest struct {
	params Params
}

func New(p Params) *RandomForest {
	if p.Trees <= 0 {
		p.Trees = 100
	}
	if p.MinLeaf <= 0 {
		p.MinLeaf = 1
	}
	if p.Workers <= 0 {
		p.Workers = runtime.NumCPU()
	}
	return &RandomForest{params: p}
}

// Forest is a fitted ensemble.
type Forest struct {
	NumClasses int
	Trees      []Tree
}

// Fit trains every tree on its own bootstrap sample. Tree i draws from a PRNG
// seeded with Seed+i, so the result does not depend on scheduling.
func (rf *RandomForest) Fit(features [][]float64, labels []int) (train.Model, error) {
	if len(features) == 0 {
		return nil, train.ErrEmptyDataset
	}
	if len(features) != len(labels) {
		return nil, fmt.Errorf("%w: %d rows, %d labels", train.ErrShapeMismatch, len(features), len(labels))
	}
	numClasses := 0
	for _, l := range labels {
		if l < 0 {
			return nil, fmt.Errorf("%w: negative label %d", train.ErrShapeMismatch, l)
		}
		if l+1 > numClasses {
			numClasses = l + 1
		}
	}
	dim := len(features[0])
	if dim == 0 {
		return nil, errors.New("feature vectors are empty")
	}

	mtry := rf.params.MaxFeatures
	if mtry <= 0 || mtry > dim {
		mtry = int(math.Max(1, math.Sqrt(float64(dim))))
	}

	f := &Forest{NumClasses: numClasses, Trees: make([]Tree, rf.params.Trees)}
	jobs := make(chan int, rf.params.Trees)
	for i := range f.Trees {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < rf.params.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				g := &grower{
					x:          features,
					y:          labels,
					numClasses: numClasses,
					mtry:       mtry,
					maxDepth:   rf.params.MaxDepth,
					minLeaf:    rf.params.MinLeaf,
					rng:        rand.New(rand.NewSource(rf.params.Seed + int64(i))),
				}
				f.Trees[i] = g.grow(g.bootstrap(len(features)))
				logger.Debug("tree fitted",
					logger.Int("tree", i),
					logger.Int("nodes", len(f.Trees[i].Nodes)))
			}
		}()
	}
	wg.Wait()
	return f, nil
}

// Predict returns the majority vote of the trees; ties go to the lowest class id.
func (f *Forest) Predict(vector []float64) int {
	votes := make([]int, f.NumClasses)
	for i := range f.Trees {
		votes[f.Trees[i].Predict(vector)]++
	}
	return argmax(votes)
}

func argmax(counts []int) int {
	best := 0
	for c, n := range counts {
		if n > counts[best] {
			best = c
		}
	}
	return best
}

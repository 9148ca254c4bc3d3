package annotation

import (
	"sort"
	"sync"

	"chordprep/logger"
)

type entry struct {
	id    int
	count int
}

// Index maps chord labels to dense class ids in order of first sight.
// Encode must only be called by one writer; Lookup is safe concurrently.
type Index struct {
	mu     sync.RWMutex
	ids    map[string]*entry
	labels []string
}

func NewIndex() *Index {
	return &Index{ids: make(map[string]*entry)}
}

// Encode returns the class id of label, assigning the next id on first sight.
// Every call counts one occurrence.
func (x *Index) Encode(label string) int {
	x.mu.Lock()
	defer x.mu.Unlock()

	if e, ok := x.ids[label]; ok {
		e.count++
		return e.id
	}
	e := &entry{id: len(x.labels), count: 1}
	x.ids[label] = e
	x.labels = append(x.labels, label)
	return e.id
}

// Lookup returns the class id of a known label without assigning one.
func (x *Index) Lookup(label string) (int, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	e, ok := x.ids[label]
	if !ok {
		return 0, false
	}
	return e.id, true
}

// Count is the number of occurrences encoded for label.
func (x *Index) Count(label string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if e, ok := x.ids[label]; ok {
		return e.count
	}
	return 0
}

func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.labels)
}

// Labels returns label names ordered by class id.
func (x *Index) Labels() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]string(nil), x.labels...)
}

// IndexFiles encodes every chord label of the given files, visiting them in
// lexical path order so ids are stable for a fixed corpus. Unreadable files are
// skipped and reported.
func IndexFiles(r *Reader, paths []string) (*Index, []error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	idx := NewIndex()
	var errs []error
	for _, p := range sorted {
		intervals, err := r.Read(p)
		if err != nil {
			logger.Warn("skipping annotation file while indexing labels",
				logger.String("path", p),
				logger.ErrorField(err))
			errs = append(errs, err)
			continue
		}
		for _, iv := range intervals {
			idx.Encode(iv.Label)
		}
	}
	return idx, errs
}

package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	xxhash "github.com/OneOfOne/xxhash"
)

// Params are the extraction settings that change the dataset's content.
type Params struct {
	OverSamplingRate float64
	NFFT             int
	SampleRate       int
	Loader           string
	Namespace        string
	Preferred        int
}

// Fingerprint hashes the corpus file list (name, size, modification time) and
// the extraction parameters. Any change to either yields a different key.
func Fingerprint(files []string, p Params) (string, error) {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	h := xxhash.New64()
	fmt.Fprintf(h, "osr=%g nfft=%d sr=%d loader=%s ns=%s pref=%d\n",
		p.OverSamplingRate, p.NFFT, p.SampleRate, p.Loader, p.Namespace, p.Preferred)
	for _, f := range sorted {
		st, err := os.Stat(f)
		if err != nil {
			return "", fmt.Errorf("fingerprint %s: %w", f, err)
		}
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", filepath.Base(f), st.Size(), st.ModTime().UnixNano())
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

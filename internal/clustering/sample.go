package clustering

import (
	"math/rand/v2"

	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
)

// DefaultSampleSize is the number of songs shown for a cluster.
const DefaultSampleSize = 30

// Sample draws min(n, Count(ds, label)) songs carrying label, uniformly and
// without replacement. A nil rng uses a freshly seeded source, so repeated
// calls return different songs. An empty slice is returned when no song
// matches.
func Sample(ds *dataset.Dataset, label, n int, rng *rand.Rand) []dataset.Song {
	var matching []int
	for i, s := range ds.All() {
		if s.HasLabel(label) {
			matching = append(matching, i)
		}
	}

	k := min(max(n, 0), len(matching))
	if k == 0 {
		return []dataset.Song{}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	// Partial Fisher-Yates: the first k positions end up uniformly chosen.
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(matching)-i)
		matching[i], matching[j] = matching[j], matching[i]
	}

	songs := make([]dataset.Song, k)
	for i, idx := range matching[:k] {
		songs[i] = ds.Song(idx)
	}
	return songs
}

// DisplayColumns returns the columns shown in a sample table: the
// descriptive columns present in the source, then every feature.
func DisplayColumns(ds *dataset.Dataset) []string {
	var cols []string
	for _, c := range dataset.DescriptiveColumns {
		if ds.HasColumn(c) {
			cols = append(cols, c)
		}
	}
	return append(cols, dataset.FeatureNames[:]...)
}

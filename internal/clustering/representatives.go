package clustering

import (
	"cmp"
	"math"
	"slices"

	"github.com/muesli/clusters"

	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
)

// Representative is a song together with its distance to the cluster profile.
type Representative struct {
	Song     dataset.Song
	Distance float64 // Squared euclidean distance in raw feature space
}

// Representatives returns up to n songs of a cluster ordered by their
// distance to the cluster's mean feature vector, closest first. Songs with
// null features are skipped. Ties keep dataset order.
func Representatives(ds *dataset.Dataset, label, n int) []Representative {
	if n <= 0 {
		return []Representative{}
	}

	p := FeatureProfile(ds, label)
	centroid, ok := profileCoordinates(p)
	if !ok {
		return []Representative{}
	}

	var reps []Representative
	for _, s := range ds.All() {
		if !s.HasLabel(label) {
			continue
		}
		coords, ok := extractFeatures(s)
		if !ok {
			continue
		}
		reps = append(reps, Representative{
			Song:     s,
			Distance: coords.Distance(centroid),
		})
	}

	slices.SortStableFunc(reps, func(a, b Representative) int {
		return cmp.Compare(a.Distance, b.Distance)
	})

	if len(reps) > n {
		reps = reps[:n]
	}
	if reps == nil {
		return []Representative{}
	}
	return reps
}

// extractFeatures returns the song's features as a coordinate vector, or
// false if any feature is null or NaN.
func extractFeatures(s dataset.Song) (clusters.Coordinates, bool) {
	coords := make(clusters.Coordinates, 0, dataset.NumFeatures)
	for _, v := range s.Values() {
		if v == nil || math.IsNaN(*v) {
			return nil, false
		}
		coords = append(coords, *v)
	}
	return coords, true
}

// profileCoordinates returns the profile means as a coordinate vector, or
// false if the profile is empty or any mean is undefined.
func profileCoordinates(p Profile) (clusters.Coordinates, bool) {
	if p.Empty() {
		return nil, false
	}
	coords := make(clusters.Coordinates, 0, dataset.NumFeatures)
	for _, m := range p.Means {
		if math.IsNaN(m) {
			return nil, false
		}
		coords = append(coords, m)
	}
	return coords, true
}

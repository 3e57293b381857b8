// Package clustering summarises a precomputed, clustered song dataset:
// per-cluster counts, feature profiles, a PCA projection and random samples.
// Every operation is read-only over an immutable dataset.
package clustering

import (
	"math"

	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
)

// Profile holds the mean of each audio feature across the songs of one cluster.
type Profile struct {
	Label int
	Count int                          // Songs carrying the label
	Means [dataset.NumFeatures]float64 // In dataset.FeatureNames order; NaN when no value contributed
}

// Mean returns the mean of the named feature, or NaN if the name is unknown.
func (p Profile) Mean(feature string) float64 {
	for i, name := range dataset.FeatureNames {
		if name == feature {
			return p.Means[i]
		}
	}
	return math.NaN()
}

// Map returns the profile as a feature name to mean mapping.
func (p Profile) Map() map[string]float64 {
	m := make(map[string]float64, dataset.NumFeatures)
	for i, name := range dataset.FeatureNames {
		m[name] = p.Means[i]
	}
	return m
}

// Empty reports whether no song carries the profile's label.
func (p Profile) Empty() bool {
	return p.Count == 0
}

// Count returns the number of songs whose cluster equals label.
// Zero is a normal result for an unknown or empty cluster.
func Count(ds *dataset.Dataset, label int) int {
	n := 0
	for _, s := range ds.All() {
		if s.HasLabel(label) {
			n++
		}
	}
	return n
}

// Profiles computes the feature profile of every cluster in one pass over the
// dataset. Null feature values are excluded from both the sum and the divisor
// of that feature's mean. Songs without a label are ignored.
func Profiles(ds *dataset.Dataset) map[int]Profile {
	type acc struct {
		count int
		sums  [dataset.NumFeatures]float64
		seen  [dataset.NumFeatures]int
	}

	groups := make(map[int]*acc)
	for _, s := range ds.All() {
		if s.Cluster == nil {
			continue
		}
		a, ok := groups[*s.Cluster]
		if !ok {
			a = &acc{}
			groups[*s.Cluster] = a
		}
		a.count++
		for i, v := range s.Values() {
			if v == nil || math.IsNaN(*v) {
				continue
			}
			a.sums[i] += *v
			a.seen[i]++
		}
	}

	profiles := make(map[int]Profile, len(groups))
	for label, a := range groups {
		p := Profile{Label: label, Count: a.count}
		for i := range p.Means {
			if a.seen[i] == 0 {
				p.Means[i] = math.NaN()
				continue
			}
			p.Means[i] = a.sums[i] / float64(a.seen[i])
		}
		profiles[label] = p
	}
	return profiles
}

// FeatureProfile returns the profile of one cluster, selected from the
// profiles of all clusters. A label with no songs yields an empty profile
// whose means are all NaN; callers should show it as "no data".
func FeatureProfile(ds *dataset.Dataset, label int) Profile {
	if p, ok := Profiles(ds)[label]; ok {
		return p
	}
	return emptyProfile(label)
}

func emptyProfile(label int) Profile {
	p := Profile{Label: label}
	for i := range p.Means {
		p.Means[i] = math.NaN()
	}
	return p
}

// Package dataset loads and validates the precomputed, clustered song table.
package dataset

import (
	"iter"
	"slices"

	"github.com/google/uuid"
)

// Column names understood by the loader.
const (
	ClusterColumn   = "cluster"
	TrackNameColumn = "track_name"
	ArtistColumn    = "artist"
)

// NumFeatures is the number of audio features carried by every song.
const NumFeatures = 8

// FeatureNames lists the audio features in their canonical order.
// Profiles, projections and display tables all follow this order.
var FeatureNames = [NumFeatures]string{
	"danceability",
	"energy",
	"acousticness",
	"instrumentalness",
	"speechiness",
	"tempo",
	"valence",
	"loudness",
}

// DescriptiveColumns are optional text columns shown next to the features.
var DescriptiveColumns = []string{TrackNameColumn, ArtistColumn}

// RequiredColumns returns the columns a source must provide, in the order
// they are validated.
func RequiredColumns() []string {
	cols := make([]string, 0, NumFeatures+1)
	cols = append(cols, FeatureNames[:]...)
	return append(cols, ClusterColumn)
}

// Song represents one row of the dataset.
type Song struct {
	TrackName string
	Artist    string
	// Cluster label (nil if the cell was empty)
	Cluster *int
	// Audio features (nil if the cell was empty)
	Danceability     *float64
	Energy           *float64
	Acousticness     *float64
	Instrumentalness *float64
	Speechiness      *float64
	Tempo            *float64
	Valence          *float64
	Loudness         *float64
}

// Values returns the song's features in FeatureNames order.
func (s Song) Values() [NumFeatures]*float64 {
	return [NumFeatures]*float64{
		s.Danceability,
		s.Energy,
		s.Acousticness,
		s.Instrumentalness,
		s.Speechiness,
		s.Tempo,
		s.Valence,
		s.Loudness,
	}
}

// Feature returns the value of the named feature, or nil if the value is
// missing or the name is not a feature.
func (s Song) Feature(name string) *float64 {
	i := slices.Index(FeatureNames[:], name)
	if i < 0 {
		return nil
	}
	return s.Values()[i]
}

// HasLabel reports whether the song belongs to the given cluster.
func (s Song) HasLabel(label int) bool {
	return s.Cluster != nil && *s.Cluster == label
}

// featureRef returns a pointer to the i-th feature field.
func (s *Song) featureRef(i int) **float64 {
	switch i {
	case 0:
		return &s.Danceability
	case 1:
		return &s.Energy
	case 2:
		return &s.Acousticness
	case 3:
		return &s.Instrumentalness
	case 4:
		return &s.Speechiness
	case 5:
		return &s.Tempo
	case 6:
		return &s.Valence
	default:
		return &s.Loudness
	}
}

// Dataset is an immutable, ordered collection of songs sharing one schema.
// It is safe for concurrent reads.
type Dataset struct {
	source  string
	version uuid.UUID
	columns []string
	songs   []Song
}

// FromSongs builds a dataset from already-parsed songs. The columns slice is
// the source header; required columns are added when absent. Each call gets
// a fresh version.
func FromSongs(source string, columns []string, songs []Song) *Dataset {
	cols := slices.Clone(columns)
	for _, c := range RequiredColumns() {
		if !slices.Contains(cols, c) {
			cols = append(cols, c)
		}
	}
	return &Dataset{
		source:  source,
		version: uuid.New(),
		columns: cols,
		songs:   slices.Clone(songs),
	}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.songs)
}

// Song returns the i-th row.
func (d *Dataset) Song(i int) Song {
	return d.songs[i]
}

// All iterates over the rows in source order.
func (d *Dataset) All() iter.Seq2[int, Song] {
	return func(yield func(int, Song) bool) {
		for i, s := range d.songs {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Songs returns a copy of all rows.
func (d *Dataset) Songs() []Song {
	return slices.Clone(d.songs)
}

// Labels returns the sorted distinct cluster labels. Rows without a label
// are ignored.
func (d *Dataset) Labels() []int {
	seen := make(map[int]struct{})
	for _, s := range d.songs {
		if s.Cluster != nil {
			seen[*s.Cluster] = struct{}{}
		}
	}
	labels := make([]int, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

// Columns returns the source header.
func (d *Dataset) Columns() []string {
	return slices.Clone(d.columns)
}

// HasColumn reports whether the source header contains name.
func (d *Dataset) HasColumn(name string) bool {
	return slices.Contains(d.columns, name)
}

// Source returns the path the dataset was loaded from.
func (d *Dataset) Source() string {
	return d.source
}

// Version identifies the dataset content. Two loads of identical bytes
// share a version.
func (d *Dataset) Version() uuid.UUID {
	return d.version
}

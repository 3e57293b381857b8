package clustering

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
)

// projectionComponents is the dimensionality of the projection.
const projectionComponents = 2

// Common errors.
var (
	// ErrEmptyDataset is returned when a projection is requested for no rows.
	ErrEmptyDataset = errors.New("dataset has no rows")
	// ErrDecomposition is returned when the singular value decomposition fails.
	ErrDecomposition = errors.New("principal component decomposition failed")
)

// MissingFeatureError reports a row that cannot be projected because one of
// its features is null.
type MissingFeatureError struct {
	Row     int
	Feature string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("row %d has no value for %s", e.Row, e.Feature)
}

// Point is one song's position in the projection.
type Point struct {
	X     float64
	Y     float64
	Label *int // nil when the song has no cluster label
}

// Project fits a two-component principal component analysis over the eight
// features of every song and returns one point per song, in dataset order.
//
// Features are centred but not scaled, so wide-ranged features such as tempo
// and loudness dominate the variance. The result is deterministic: each
// component is oriented so that its largest-magnitude loading is positive.
func Project(ds *dataset.Dataset) ([]Point, error) {
	n := ds.Len()
	if n == 0 {
		return nil, ErrEmptyDataset
	}
	const d = dataset.NumFeatures

	raw := make([]float64, 0, n*d)
	labels := make([]*int, n)
	for i, s := range ds.All() {
		for j, v := range s.Values() {
			if v == nil || math.IsNaN(*v) {
				return nil, &MissingFeatureError{Row: i, Feature: dataset.FeatureNames[j]}
			}
			raw = append(raw, *v)
		}
		labels[i] = s.Cluster
	}
	x := mat.NewDense(n, d, raw)

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, ErrDecomposition
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	_, available := vecs.Dims()
	k := min(projectionComponents, available)
	components := mat.DenseCopyOf(vecs.Slice(0, d, 0, k))
	orientComponents(components)

	centered := center(x)
	var proj mat.Dense
	proj.Mul(centered, components)

	points := make([]Point, n)
	for i := range points {
		points[i].Label = labels[i]
		points[i].X = proj.At(i, 0)
		if k > 1 {
			points[i].Y = proj.At(i, 1)
		}
	}
	return points, nil
}

// center returns a copy of x with each column's mean subtracted.
func center(x *mat.Dense) *mat.Dense {
	r, c := x.Dims()
	means := make([]float64, c)
	col := make([]float64, r)
	for j := range means {
		means[j] = stat.Mean(mat.Col(col, j, x), nil)
	}

	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return v - means[j]
	}, x)
	return out
}

// orientComponents flips the sign of every column whose largest-magnitude
// entry is negative. Ties keep the first entry.
func orientComponents(m *mat.Dense) {
	r, c := m.Dims()
	for j := 0; j < c; j++ {
		best := 0
		for i := 1; i < r; i++ {
			if math.Abs(m.At(i, j)) > math.Abs(m.At(best, j)) {
				best = i
			}
		}
		if m.At(best, j) >= 0 {
			continue
		}
		for i := 0; i < r; i++ {
			m.Set(i, j, -m.At(i, j))
		}
	}
}

// Package explorer answers presentation requests about a clustered song
// dataset. Each request resolves the dataset through the cache; when the
// source is invalid no aggregation runs and the load error is returned.
package explorer

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/justestif/go-music-cluster-explorer/internal/clustering"
	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
)

// ErrUnknownCluster is returned when a label has no songs in the dataset.
var ErrUnknownCluster = errors.New("unknown cluster")

// DefaultRepresentatives is the number of closest-to-profile songs listed
// for a cluster.
const DefaultRepresentatives = 5

// Service answers cluster exploration requests for one dataset source.
type Service struct {
	cache      *dataset.Cache
	source     string
	sampleSize int
	log        logrus.FieldLogger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithSampleSize sets the default number of songs returned by Songs.
func WithSampleSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sampleSize = n
		}
	}
}

// WithRand makes sampling use rng instead of a fresh source per call.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) {
		s.rng = rng
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a service reading source through cache.
func New(cache *dataset.Cache, source string, opts ...Option) *Service {
	s := &Service{
		cache:      cache,
		source:     source,
		sampleSize: clustering.DefaultSampleSize,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source returns the dataset path served by the service.
func (s *Service) Source() string {
	return s.source
}

// SampleSize returns the default sample size.
func (s *Service) SampleSize() int {
	return s.sampleSize
}

// Dataset returns the current dataset, or the load error.
func (s *Service) Dataset() (*dataset.Dataset, error) {
	ds, err := s.cache.Get(s.source)
	if err != nil {
		s.log.WithError(err).WithField("source", s.source).Error("Dataset unavailable")
		return nil, err
	}
	return ds, nil
}

// Snapshot answers requests against one resolved dataset, so every part
// of a response describes the same version of the source.
type Snapshot struct {
	svc *Service
	ds  *dataset.Dataset
}

// Snapshot resolves the current dataset once, or returns the load error.
func (s *Service) Snapshot() (*Snapshot, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return &Snapshot{svc: s, ds: ds}, nil
}

// Dataset returns the dataset the snapshot was taken from.
func (sn *Snapshot) Dataset() *dataset.Dataset {
	return sn.ds
}

// Version returns the snapshot's dataset version.
func (sn *Snapshot) Version() string {
	return sn.ds.Version().String()
}

// Overview is the dataset-level state shown before any cluster is selected.
type Overview struct {
	Valid      bool
	Message    string // Load error when Valid is false
	Labels     []int  // Sorted distinct labels
	TotalSongs int
	Version    string
}

// Overview reports whether the dataset is usable and lists its clusters.
func (s *Service) Overview() Overview {
	sn, err := s.Snapshot()
	if err != nil {
		return Overview{Message: err.Error()}
	}
	return sn.Overview()
}

// Overview lists the clusters of the snapshot.
func (sn *Snapshot) Overview() Overview {
	return Overview{
		Valid:      true,
		Labels:     sn.ds.Labels(),
		TotalSongs: sn.ds.Len(),
		Version:    sn.Version(),
	}
}

// ClusterView is everything shown about one cluster besides the sample table.
type ClusterView struct {
	Label           int
	Count           int
	Description     clustering.Description
	Profile         clustering.Profile
	Representatives []clustering.Representative
	Version         string
}

// Cluster returns the overview of one cluster. Unknown labels are not an
// error: they have a zero count and an empty profile.
func (s *Service) Cluster(label int) (*ClusterView, error) {
	sn, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return sn.Cluster(label), nil
}

// Cluster returns the overview of one cluster of the snapshot.
func (sn *Snapshot) Cluster(label int) *ClusterView {
	profile := clustering.FeatureProfile(sn.ds, label)
	return &ClusterView{
		Label:           label,
		Count:           clustering.Count(sn.ds, label),
		Description:     clustering.Describe(label, profile),
		Profile:         profile,
		Representatives: clustering.Representatives(sn.ds, label, DefaultRepresentatives),
		Version:         sn.Version(),
	}
}

// Projection is the PCA view of the whole dataset.
type Projection struct {
	Points  []clustering.Point
	Labels  []int
	Version string
}

// Projection projects every song of the dataset.
func (s *Service) Projection() (*Projection, error) {
	sn, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return sn.Projection()
}

// Projection projects every song of the snapshot.
func (sn *Snapshot) Projection() (*Projection, error) {
	points, err := clustering.Project(sn.ds)
	if err != nil {
		return nil, fmt.Errorf("projecting dataset: %w", err)
	}
	return &Projection{
		Points:  points,
		Labels:  sn.ds.Labels(),
		Version: sn.Version(),
	}, nil
}

// SongTable is a random sample of one cluster's songs.
type SongTable struct {
	Label     int
	Requested int
	Columns   []string
	Songs     []dataset.Song
	Version   string
}

// Songs samples up to n songs of a cluster; n <= 0 uses the default size.
func (s *Service) Songs(label, n int) (*SongTable, error) {
	sn, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return sn.Songs(label, n), nil
}

// Songs samples up to n songs of a cluster of the snapshot.
func (sn *Snapshot) Songs(label, n int) *SongTable {
	if n <= 0 {
		n = sn.svc.sampleSize
	}
	return &SongTable{
		Label:     label,
		Requested: n,
		Columns:   clustering.DisplayColumns(sn.ds),
		Songs:     sn.svc.sample(sn.ds, label, n),
		Version:   sn.Version(),
	}
}

// sample serialises access to an injected rng, which is not safe for
// concurrent use.
func (s *Service) sample(ds *dataset.Dataset, label, n int) []dataset.Song {
	if s.rng == nil {
		return clustering.Sample(ds, label, n, nil)
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return clustering.Sample(ds, label, n, s.rng)
}

// Summary returns the text summary of every cluster.
func (s *Service) Summary() (string, error) {
	ds, err := s.Dataset()
	if err != nil {
		return "", err
	}
	return clustering.FormatClusterSummary(clustering.Summarize(ds), ds.Len()), nil
}

// ClusterSummary returns the text summary of a single cluster.
func (s *Service) ClusterSummary(label int) (string, error) {
	ds, err := s.Dataset()
	if err != nil {
		return "", err
	}
	for _, sum := range clustering.Summarize(ds) {
		if sum.Label == label {
			return clustering.FormatClusterSummary([]clustering.Summary{sum}, ds.Len()), nil
		}
	}
	return "", fmt.Errorf("%w: %d", ErrUnknownCluster, label)
}

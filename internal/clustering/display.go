package clustering

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
)

const sampleTrackCount = 3

var printer = message.NewPrinter(language.English)

// Summary bundles what is shown for one cluster.
type Summary struct {
	Label           int
	Description     Description
	Profile         Profile
	Representatives []Representative
}

// Summarize builds the summary of every labelled cluster, in label order.
func Summarize(ds *dataset.Dataset) []Summary {
	profiles := Profiles(ds)
	labels := ds.Labels()

	summaries := make([]Summary, 0, len(labels))
	for _, label := range labels {
		p := profiles[label]
		summaries = append(summaries, Summary{
			Label:           label,
			Description:     Describe(label, p),
			Profile:         p,
			Representatives: Representatives(ds, label, sampleTrackCount),
		})
	}
	return summaries
}

// FormatCount formats n with thousands separators ("12,345").
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatValue formats a feature mean, showing "no data" for NaN.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "no data"
	}
	return fmt.Sprintf("%.3f", v)
}

// FormatClusterSummary returns a human-readable summary of the clusters.
// Shows the description, song count, feature means and up to 3 songs
// closest to each cluster's profile.
func FormatClusterSummary(summaries []Summary, totalSongs int) string {
	var sb strings.Builder

	if len(summaries) == 0 {
		sb.WriteString(fmt.Sprintf("No clusters found in %s songs\n", FormatCount(totalSongs)))
		return sb.String()
	}

	clusterWord := "cluster"
	if len(summaries) > 1 {
		clusterWord = "clusters"
	}
	sb.WriteString(fmt.Sprintf("Found %d %s in %s songs\n", len(summaries), clusterWord, FormatCount(totalSongs)))

	for _, s := range summaries {
		sb.WriteString("\n")
		sb.WriteString(formatCluster(s))
	}

	return sb.String()
}

// formatCluster formats a single cluster with its closest songs.
func formatCluster(s Summary) string {
	var sb strings.Builder

	songWord := "song"
	if s.Profile.Count != 1 {
		songWord = "songs"
	}

	title := s.Description.Title
	if title == "" {
		title = "Untitled"
	}
	sb.WriteString(fmt.Sprintf("Cluster %d: %s (%s %s)\n", s.Label, title, FormatCount(s.Profile.Count), songWord))
	sb.WriteString(fmt.Sprintf("  %s\n", s.Description.Summary))

	for i, name := range dataset.FeatureNames {
		sb.WriteString(fmt.Sprintf("  %-17s %s\n", name, FormatValue(s.Profile.Means[i])))
	}

	for _, r := range s.Representatives {
		if r.Song.TrackName == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("  • \"%s\" - %s\n", r.Song.TrackName, r.Song.Artist))
	}

	remaining := s.Profile.Count - len(s.Representatives)
	if len(s.Representatives) > 0 && remaining > 0 {
		sb.WriteString(fmt.Sprintf("  ... and %s more\n", FormatCount(remaining)))
	}

	return sb.String()
}

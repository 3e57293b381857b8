package clustering

import "math"

// fallbackDescription is shown for labels without a curated description.
const fallbackDescription = "No description available."

// Description is the human-readable summary of a cluster.
type Description struct {
	Title   string // Short name, e.g. "Acoustic & Calm"
	Summary string // One-line explanation
	Curated bool   // False when the title was derived from the profile
}

// curatedDescriptions describe the clusters produced by the upstream model.
var curatedDescriptions = map[int]Description{
	0: {Title: "High Energy & Danceable", Summary: "Party / Upbeat tracks.", Curated: true},
	1: {Title: "Acoustic & Calm", Summary: "Relaxing, soothing songs.", Curated: true},
	2: {Title: "Electronic / High Tempo", Summary: "EDM / Workout music.", Curated: true},
	3: {Title: "Balanced Modern Pop", Summary: "Mainstream chart-style tracks.", Curated: true},
	4: {Title: "Low Energy & Dark Mood", Summary: "Emotional / Ambient style songs.", Curated: true},
}

// Describe returns the description of a cluster. Labels without a curated
// description get a mood name derived from their profile, or no title at
// all when the profile has no data.
func Describe(label int, p Profile) Description {
	if d, ok := curatedDescriptions[label]; ok {
		return d
	}

	energy := p.Mean("energy")
	valence := p.Mean("valence")
	if p.Empty() || math.IsNaN(energy) || math.IsNaN(valence) {
		return Description{Summary: fallbackDescription}
	}

	return Description{
		Title:   generateMoodName(energy, valence, p.Mean("acousticness")),
		Summary: fallbackDescription,
	}
}

// generateMoodName creates a descriptive name from mean feature values.
// Uses a 2x2 energy/valence quadrant system with acousticness modifier.
//
// Quadrants:
//   - High Energy + High Valence = "Upbeat Party"
//   - High Energy + Low Valence  = "Intense & Dark"
//   - Low Energy  + High Valence = "Chill & Happy"
//   - Low Energy  + Low Valence  = "Reflective & Melancholy"
//
// Acousticness modifier: if > 0.6, appends "(Acoustic)" to the name.
func generateMoodName(energy, valence, acousticness float64) string {
	var baseName string

	highEnergy := energy > 0.6
	highValence := valence > 0.5

	switch {
	case highEnergy && highValence:
		baseName = "Upbeat Party"
	case highEnergy && !highValence:
		baseName = "Intense & Dark"
	case !highEnergy && highValence:
		baseName = "Chill & Happy"
	default: // low energy, low valence
		baseName = "Reflective & Melancholy"
	}

	// NaN compares false, so a missing acousticness never adds the modifier
	if acousticness > 0.6 {
		return baseName + " (Acoustic)"
	}

	return baseName
}

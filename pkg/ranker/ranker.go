// Package ranker blends quality and relevance scores into composite
// recommendations bucketed into presentation tiers. Everything here is a
// pure function of its inputs.
package ranker

import (
	"math"
	"sort"
)

// Tier buckets a recommendation for presentation.
type Tier string

const (
	TierMustInstall Tier = "must_install"
	TierInstall     Tier = "install"
	TierMaybe       Tier = "maybe"
	TierSkip        Tier = "skip"
)

// Tiers lists all tiers in display order.
var Tiers = []Tier{TierMustInstall, TierInstall, TierMaybe, TierSkip}

const (
	qualityWeight   = 0.6
	relevanceWeight = 0.4

	mustInstallThreshold = 85.0
	installThreshold     = 70.0
	maybeThreshold       = 50.0
)

// Input is one document's pre-computed quality and relevance.
type Input struct {
	Name          string
	Title         string
	URL           string
	WeightedScore float64
	Verdict       string
	Relevance     int
	Reason        string
}

// Recommendation is one ranked entry.
type Recommendation struct {
	Name          string  `json:"name"`
	Title         string  `json:"title"`
	URL           string  `json:"url,omitempty"`
	WeightedScore float64 `json:"weighted_score"`
	Verdict       string  `json:"verdict"`
	Relevance     int     `json:"relevance"`
	Reason        string  `json:"reason,omitempty"`
	Composite     float64 `json:"composite"`
	Tier          Tier    `json:"tier"`
}

// Composite blends quality and relevance, rounded to one decimal place.
func Composite(weightedScore float64, relevance int) float64 {
	c := weightedScore*qualityWeight + float64(relevance)*relevanceWeight
	return math.Round(c*10) / 10
}

// TierFor buckets a composite score. Lower bounds are inclusive.
func TierFor(composite float64) Tier {
	switch {
	case composite >= mustInstallThreshold:
		return TierMustInstall
	case composite >= installThreshold:
		return TierInstall
	case composite >= maybeThreshold:
		return TierMaybe
	default:
		return TierSkip
	}
}

// Rank converts inputs into recommendations sorted by descending composite,
// ties broken by descending relevance, then ascending title. The order is
// total, so identical inputs always produce identical output.
func Rank(inputs []Input) []Recommendation {
	recs := make([]Recommendation, 0, len(inputs))
	for _, in := range inputs {
		composite := Composite(in.WeightedScore, in.Relevance)
		recs = append(recs, Recommendation{
			Name:          in.Name,
			Title:         in.Title,
			URL:           in.URL,
			WeightedScore: in.WeightedScore,
			Verdict:       in.Verdict,
			Relevance:     in.Relevance,
			Reason:        in.Reason,
			Composite:     composite,
			Tier:          TierFor(composite),
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Composite != recs[j].Composite {
			return recs[i].Composite > recs[j].Composite
		}
		if recs[i].Relevance != recs[j].Relevance {
			return recs[i].Relevance > recs[j].Relevance
		}
		return recs[i].Title < recs[j].Title
	})
	return recs
}

// ByTier groups ranked recommendations by tier, preserving their order.
func ByTier(recs []Recommendation) map[Tier][]Recommendation {
	grouped := make(map[Tier][]Recommendation, len(Tiers))
	for _, r := range recs {
		grouped[r.Tier] = append(grouped[r.Tier], r)
	}
	return grouped
}

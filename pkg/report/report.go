// Package report renders evaluation results as human-readable text. All
// output is plain text so reports can be written to files as-is; color and
// interactivity belong to the presenter layer.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skillvet/skillvet/pkg/ranker"
	"github.com/skillvet/skillvet/pkg/relevance"
	"github.com/skillvet/skillvet/pkg/rubric"
	"github.com/skillvet/skillvet/pkg/scorer"
	"github.com/skillvet/skillvet/pkg/security"
	"github.com/skillvet/skillvet/pkg/skill"
)

const lineWidth = 62

var (
	heavyRule = strings.Repeat("=", lineWidth)
	lightRule = strings.Repeat("-", lineWidth)
)

var verdictLabels = map[rubric.Verdict]string{
	rubric.VerdictInstall: "INSTALL - recommended",
	rubric.VerdictMaybe:   "MAYBE - depends on your needs",
	rubric.VerdictSkip:    "SKIP - not recommended",
}

var recommendationLabels = map[security.Recommendation]string{
	security.RecommendationInstall: "INSTALL - safe to install",
	security.RecommendationReview:  "REVIEW - needs human review",
	security.RecommendationReject:  "REJECT - do not install",
}

var tierLabels = map[ranker.Tier]string{
	ranker.TierMustInstall: "MUST INSTALL",
	ranker.TierInstall:     "INSTALL",
	ranker.TierMaybe:       "MAYBE",
	ranker.TierSkip:        "SKIP",
}

// Quality renders a quality evaluation report.
func Quality(result *scorer.Result) string {
	var b strings.Builder
	b.WriteString(heavyRule + "\n")
	fmt.Fprintf(&b, "  Skill quality report: %s\n", result.SkillName)
	b.WriteString(heavyRule + "\n\n")

	typeLabel := "self-contained"
	if result.SkillType == skill.TypeIndex {
		typeLabel = "index"
	}
	fmt.Fprintf(&b, "  Weighted score: %.1f / 100\n", result.WeightedScore)
	fmt.Fprintf(&b, "  Verdict:        %s\n", labelOr(verdictLabels[result.Verdict], string(result.Verdict)))
	fmt.Fprintf(&b, "  Skill type:     %s\n\n", typeLabel)

	b.WriteString(lightRule + "\n")
	b.WriteString("  Dimension scores\n")
	b.WriteString(lightRule + "\n")
	for _, dim := range rubric.Catalog {
		ds := result.Dimensions[dim.Key]
		fmt.Fprintf(&b, "  %-22s [%s] %3d/100  (weight %.0f%%)\n",
			dim.Name, bar(ds.Score), ds.Score, dim.Weight*100)
		for _, w := range head(ds.Weaknesses, 2) {
			fmt.Fprintf(&b, "    - %s\n", w)
		}
		for _, s := range head(ds.Strengths, 1) {
			fmt.Fprintf(&b, "    + %s\n", s)
		}
		b.WriteString("\n")
	}

	b.WriteString(lightRule + "\n")
	b.WriteString("  Overall assessment\n")
	b.WriteString(lightRule + "\n")
	fmt.Fprintf(&b, "  %s\n\n", result.Summary)

	if len(result.TopIssues) > 0 {
		b.WriteString(lightRule + "\n")
		b.WriteString("  Top issues\n")
		b.WriteString(lightRule + "\n")
		for i, issue := range result.TopIssues {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, issue)
		}
		b.WriteString("\n")
	}

	if suggestions := collectSuggestions(result); len(suggestions) > 0 {
		b.WriteString(lightRule + "\n")
		b.WriteString("  Suggestions\n")
		b.WriteString(lightRule + "\n")
		for _, s := range suggestions {
			fmt.Fprintf(&b, "  > %s\n", s)
		}
		b.WriteString("\n")
	}

	b.WriteString(heavyRule + "\n\n")
	b.WriteString("  Note: a high score reflects document quality, not usefulness for\n")
	b.WriteString("  your project. Skills covering topics the agent already knows well\n")
	b.WriteString("  are mainly worth installing to enforce team-specific conventions.\n")
	return b.String()
}

// Security renders a security scan report.
func Security(result *security.ScanResult) string {
	var b strings.Builder
	b.WriteString(heavyRule + "\n")
	fmt.Fprintf(&b, "  Security scan report: %s\n", result.SkillName)
	b.WriteString(heavyRule + "\n")
	fmt.Fprintf(&b, "  Risk level:     %s\n", result.RiskLevel)
	fmt.Fprintf(&b, "  Recommendation: %s\n", labelOr(recommendationLabels[result.Recommendation], string(result.Recommendation)))
	fmt.Fprintf(&b, "  Model risk: %s  |  Pattern hits: %d\n\n", result.ModelRisk, result.PatternHits)
	if result.Summary != "" {
		fmt.Fprintf(&b, "  %s\n", result.Summary)
	}

	if len(result.Findings) > 0 {
		b.WriteString("\n" + lightRule + "\n")
		b.WriteString("  Findings\n")
		b.WriteString(lightRule + "\n")
		for _, f := range result.Findings {
			fmt.Fprintf(&b, "  [%s] %s (%s): %s\n", f.Severity, f.Category, f.Source, f.Description)
			if f.Evidence != "" {
				fmt.Fprintf(&b, "    >> %s\n", truncate(f.Evidence, 100))
			}
		}
	} else {
		b.WriteString("\n  No security issues found.\n")
	}
	return b.String()
}

// Recommendations renders the tiered recommendation report.
func Recommendations(profile relevance.Profile, recs []ranker.Recommendation, showSkip bool) string {
	var b strings.Builder
	b.WriteString(heavyRule + "\n")
	b.WriteString("  Personalized skill recommendations\n")
	fmt.Fprintf(&b, "  Tech stack:   %s\n", strings.Join(profile.TechStack, ", "))
	fmt.Fprintf(&b, "  Project type: %s\n", profile.ProjectType)
	b.WriteString(heavyRule + "\n")

	grouped := ranker.ByTier(recs)
	fmt.Fprintf(&b, "\n  %d candidate skills: must-install %d, install %d, maybe %d, skip %d\n",
		len(recs),
		len(grouped[ranker.TierMustInstall]),
		len(grouped[ranker.TierInstall]),
		len(grouped[ranker.TierMaybe]),
		len(grouped[ranker.TierSkip]))

	tiers := []ranker.Tier{ranker.TierMustInstall, ranker.TierInstall, ranker.TierMaybe}
	if showSkip {
		tiers = append(tiers, ranker.TierSkip)
	}
	for _, tier := range tiers {
		items := grouped[tier]
		if len(items) == 0 {
			continue
		}
		b.WriteString("\n" + lightRule + "\n")
		fmt.Fprintf(&b, "  %s\n", tierLabels[tier])
		b.WriteString(lightRule + "\n")
		for _, r := range items {
			fmt.Fprintf(&b, "  %-35s quality=%5.1f  relevance=%3d  composite=%5.1f\n",
				r.Title, r.WeightedScore, r.Relevance, r.Composite)
			if r.Reason != "" {
				fmt.Fprintf(&b, "    -> %s\n", r.Reason)
			}
			if r.URL != "" {
				fmt.Fprintf(&b, "    %s\n", r.URL)
			}
		}
	}

	b.WriteString("\n" + heavyRule + "\n\n")
	b.WriteString("  Tip: only skills combining high relevance and high quality are\n")
	b.WriteString("  worth installing. Prefer those targeting your specific stack or\n")
	b.WriteString("  team conventions over generic topics the agent already knows.\n")
	return b.String()
}

// BatchAnalysis renders the score distribution over a batch of evaluated
// skills, useful for spotting rubric blind spots.
func BatchAnalysis(results []*scorer.Result) string {
	var b strings.Builder
	b.WriteString(heavyRule + "\n")
	b.WriteString("  Batch evaluation analysis\n")
	b.WriteString(heavyRule + "\n")
	if len(results) == 0 {
		b.WriteString("  No results to analyze.\n")
		return b.String()
	}

	var sum, min, max float64
	min = results[0].WeightedScore
	max = results[0].WeightedScore
	buckets := map[string]int{}
	verdictCounts := map[rubric.Verdict]int{}
	for _, r := range results {
		sum += r.WeightedScore
		if r.WeightedScore < min {
			min = r.WeightedScore
		}
		if r.WeightedScore > max {
			max = r.WeightedScore
		}
		buckets[bucketFor(r.WeightedScore)]++
		verdictCounts[r.Verdict]++
	}

	fmt.Fprintf(&b, "\n  Evaluated: %d\n", len(results))
	fmt.Fprintf(&b, "  Average:   %.1f\n", sum/float64(len(results)))
	fmt.Fprintf(&b, "  Highest:   %.1f\n", max)
	fmt.Fprintf(&b, "  Lowest:    %.1f\n", min)

	b.WriteString("\n" + lightRule + "\n")
	b.WriteString("  Score distribution\n")
	b.WriteString(lightRule + "\n")
	for _, bucket := range []string{"0-25", "26-50", "51-74", "75-100"} {
		count := buckets[bucket]
		fmt.Fprintf(&b, "  %8s  %s %d\n", bucket, strings.Repeat("#", count), count)
	}

	b.WriteString("\n" + lightRule + "\n")
	b.WriteString("  Verdicts\n")
	b.WriteString(lightRule + "\n")
	for _, v := range []rubric.Verdict{rubric.VerdictInstall, rubric.VerdictMaybe, rubric.VerdictSkip} {
		count := verdictCounts[v]
		fmt.Fprintf(&b, "  %-8s %d (%.0f%%)\n", v, count, float64(count)/float64(len(results))*100)
	}

	sorted := make([]*scorer.Result, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].WeightedScore > sorted[j].WeightedScore })

	b.WriteString("\n" + lightRule + "\n")
	b.WriteString("  Top 5\n")
	b.WriteString(lightRule + "\n")
	for _, r := range head(sorted, 5) {
		fmt.Fprintf(&b, "  %5.1f  %s\n", r.WeightedScore, r.SkillName)
		if r.URL != "" {
			fmt.Fprintf(&b, "         %s\n", r.URL)
		}
	}

	b.WriteString("\n" + lightRule + "\n")
	b.WriteString("  Bottom 5\n")
	b.WriteString(lightRule + "\n")
	bottom := sorted
	if len(bottom) > 5 {
		bottom = bottom[len(bottom)-5:]
	}
	for i := len(bottom) - 1; i >= 0; i-- {
		r := bottom[i]
		fmt.Fprintf(&b, "  %5.1f  %s\n", r.WeightedScore, r.SkillName)
	}

	b.WriteString("\n" + heavyRule + "\n")
	return b.String()
}

// bar renders a 20-cell score bar.
func bar(score int) string {
	filled := score / 5
	if filled > 20 {
		filled = 20
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", 20-filled)
}

func bucketFor(score float64) string {
	switch {
	case score <= 25:
		return "0-25"
	case score <= 50:
		return "26-50"
	case score < 75:
		return "51-74"
	default:
		return "75-100"
	}
}

func collectSuggestions(result *scorer.Result) []string {
	var all []string
	for _, dim := range rubric.Catalog {
		all = append(all, result.Dimensions[dim.Key].Suggestions...)
	}
	return head(all, 5)
}

func head[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

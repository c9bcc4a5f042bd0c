// Package security scans skill documents for malicious or harmful
// instructions. Two independent detectors run over the same document: a
// deterministic pattern matcher and a model-based analyzer. Their findings
// are merged by a fixed escalation policy into one risk level and one
// recommendation; neither detector asserts the final labels directly.
package security

// Source identifies which detector produced a finding.
type Source string

const (
	SourcePattern Source = "pattern"
	SourceModel   Source = "model"
)

// Category classifies what kind of threat a finding represents.
type Category string

const (
	CategoryExfiltration   Category = "exfiltration"
	CategorySensitiveFile  Category = "sensitive_file"
	CategoryInjection      Category = "injection"
	CategoryInsecureCrypto Category = "insecure_crypto"
	CategoryVulnSeeding    Category = "vuln_seeding"
	CategoryDeception      Category = "deception"
)

// criticalCategories are the pattern categories treated as ground truth: a
// single pattern hit in one of these forces a CRITICAL result no matter
// what the model detector reports.
var criticalCategories = map[Category]bool{
	CategoryExfiltration: true,
	CategoryInjection:    true,
}

// Severity is the per-finding severity.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// RiskLevel is the merged, document-level risk.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "SAFE"
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

var riskOrder = map[RiskLevel]int{
	RiskSafe:     0,
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// Recommendation is the merged install recommendation.
type Recommendation string

const (
	RecommendationInstall Recommendation = "INSTALL"
	RecommendationReview  Recommendation = "REVIEW"
	RecommendationReject  Recommendation = "REJECT"
)

// Finding is one detected issue.
type Finding struct {
	Source      Source   `json:"source"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Evidence    string   `json:"evidence,omitempty"`
	Severity    Severity `json:"severity"`
}

// ScanResult aggregates all findings for one document. RiskLevel and
// Recommendation are computed by the merge policy. ModelRisk preserves the
// model detector's own (advisory) assessment for reporting.
type ScanResult struct {
	SkillName      string         `json:"skill_name"`
	RiskLevel      RiskLevel      `json:"risk_level"`
	Recommendation Recommendation `json:"recommendation"`
	Findings       []Finding      `json:"findings"`
	Summary        string         `json:"summary,omitempty"`
	PatternHits    int            `json:"pattern_hits"`
	ModelRisk      RiskLevel      `json:"model_risk"`
}

func riskForSeverity(s Severity) RiskLevel {
	switch s {
	case SeverityLow:
		return RiskLow
	case SeverityMedium:
		return RiskMedium
	case SeverityHigh:
		return RiskHigh
	case SeverityCritical:
		return RiskCritical
	default:
		return RiskMedium
	}
}

// normalizeSeverity maps free-form model severities onto the fixed set.
// Unknown values become MEDIUM rather than being dropped.
func normalizeSeverity(raw string) Severity {
	switch Severity(raw) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(raw)
	default:
		return SeverityMedium
	}
}

func normalizeRisk(raw string) RiskLevel {
	switch RiskLevel(raw) {
	case RiskSafe, RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return RiskLevel(raw)
	default:
		return RiskSafe
	}
}

package security

import (
	"regexp"
	"strings"
)

// contentPattern is one fixed content signature. Severity is fixed per
// pattern; matches in a critical category (exfiltration, injection) are
// unambiguous enough to be treated as ground truth by the merge policy.
type contentPattern struct {
	category    Category
	severity    Severity
	description string
	re          *regexp.Regexp
}

var patternCatalog = []contentPattern{
	// Outbound data exfiltration
	{
		category:    CategoryExfiltration,
		severity:    SeverityCritical,
		description: "possible attempt to leak sensitive data to an external endpoint",
		re:          regexp.MustCompile(`(?i)(send|post|upload|exfiltrate).{0,40}(\.env|api.?key|secret|password|token)`),
	},
	{
		category:    CategoryExfiltration,
		severity:    SeverityCritical,
		description: "sends data to an external collection endpoint",
		re:          regexp.MustCompile(`(?i)curl.{0,60}(webhook|requestbin|ngrok|burp)`),
	},
	// Sensitive file access
	{
		category:    CategorySensitiveFile,
		severity:    SeverityHigh,
		description: "reads credential or key material files",
		re:          regexp.MustCompile(`(?i)(read|cat|open).{0,30}(\.env|credentials|\.pem|\.key)`),
	},
	// Prompt injection
	{
		category:    CategoryInjection,
		severity:    SeverityCritical,
		description: "prompt injection: attempts to override prior instructions",
		re:          regexp.MustCompile(`(?i)ignore (previous|prior|above|all).{0,20}instruction`),
	},
	{
		category:    CategoryInjection,
		severity:    SeverityCritical,
		description: "prompt injection: attempts to discard rules or guidelines",
		re:          regexp.MustCompile(`(?i)disregard.{0,20}(rule|guideline|instruction)`),
	},
	{
		category:    CategoryInjection,
		severity:    SeverityCritical,
		description: "attempts to change the assistant's identity",
		re:          regexp.MustCompile(`(?i)you are now.{0,30}(different|new|another)`),
	},
	{
		category:    CategoryInjection,
		severity:    SeverityCritical,
		description: "attempts to bypass restrictions or filters",
		re:          regexp.MustCompile(`(?i)act as.{0,20}(without|no).{0,20}(restrict|limit|filter)`),
	},
	// Insecure cryptographic primitives
	{
		category:    CategoryInsecureCrypto,
		severity:    SeverityMedium,
		description: "recommends a deprecated hash for password storage",
		re:          regexp.MustCompile(`(?i)(md5|sha1)\(.{0,20}password`),
	},
	// Vulnerability seeding
	{
		category:    CategoryVulnSeeding,
		severity:    SeverityMedium,
		description: "guides toward SQL built from interpolated user input",
		re:          regexp.MustCompile(`(?i)f["'].{0,20}select.{0,20}\{.{0,20}\}`),
	},
	{
		category:    CategoryVulnSeeding,
		severity:    SeverityMedium,
		description: "guides toward eval() over untrusted input",
		re:          regexp.MustCompile(`(?i)eval\(.{0,30}(input|request|user)`),
	},
	{
		category:    CategoryVulnSeeding,
		severity:    SeverityMedium,
		description: "guides toward shell command construction from untrusted input",
		re:          regexp.MustCompile(`(?i)shell=true.{0,30}(input|request|user)`),
	},
	{
		category:    CategoryVulnSeeding,
		severity:    SeverityHigh,
		description: "possible backdoor logic around debug or admin bypass",
		re:          regexp.MustCompile(`(?i)(debug|admin).{0,20}bypass`),
	},
	// User deception / warning suppression
	{
		category:    CategoryDeception,
		severity:    SeverityHigh,
		description: "guides the user into disabling or bypassing security",
		re:          regexp.MustCompile(`(?i)(convince|persuade|tell).{0,30}user.{0,30}(disable|bypass|ignore).{0,20}(security|warning|error)`),
	},
	{
		category:    CategoryDeception,
		severity:    SeverityHigh,
		description: "instructs concealing information from the user",
		re:          regexp.MustCompile(`(?i)do not (warn|tell|inform).{0,20}user`),
	},
	{
		category:    CategoryDeception,
		severity:    SeverityMedium,
		description: "instructs suppressing warnings",
		re:          regexp.MustCompile(`(?i)suppress.{0,20}(warning|error|alert)`),
	},
}

// PatternScan runs the fixed signature catalog over the document content.
// Matching is case-insensitive; each matched pattern yields one finding
// with evidence from the surrounding text. No external call is made.
func PatternScan(content string) []Finding {
	var findings []Finding
	for _, p := range patternCatalog {
		loc := p.re.FindStringIndex(content)
		if loc == nil {
			continue
		}

		start := loc[0] - 20
		if start < 0 {
			start = 0
		}
		end := loc[1] + 20
		if end > len(content) {
			end = len(content)
		}

		findings = append(findings, Finding{
			Source:      SourcePattern,
			Category:    p.category,
			Description: p.description,
			Evidence:    strings.TrimSpace(content[start:end]),
			Severity:    p.severity,
		})
	}
	return findings
}

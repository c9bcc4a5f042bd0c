package skill

import (
	"regexp"
	"strings"
)

// Index documents read as navigation: lists of pointers into other rule
// files with little procedural content of their own. Self-contained
// documents carry inline steps, examples, and code blocks. Classification
// is a pure function of the content, so the same document always lands on
// the same rubric.
var indexSignals = []*regexp.Regexp{
	regexp.MustCompile(`read individual rule files`),
	regexp.MustCompile(`rules/[\w-]+\.md`),
	regexp.MustCompile(`see.*\.md`),
	regexp.MustCompile(`refer to.*\.md`),
	regexp.MustCompile(`full compiled document`),
	regexp.MustCompile(`agents\.md`),
	regexp.MustCompile(`for detailed explanations`),
	regexp.MustCompile(`each rule file contains`),
	regexp.MustCompile(`rule categories`),
	regexp.MustCompile(`quick reference`),
}

var (
	fileRefPattern   = regexp.MustCompile("`[\\w/-]+\\.md`")
	codeBlockPattern = regexp.MustCompile("```[\\w]*\n")
)

// Classify returns the document type for the given content. Signals are
// matched case-insensitively; a document that is inconclusive defaults to
// TypeSelfContained, the stricter rubric.
func Classify(content string) Type {
	lower := strings.ToLower(content)

	indexHits := 0
	for _, p := range indexSignals {
		if p.MatchString(lower) {
			indexHits++
		}
	}

	fileRefs := len(fileRefPattern.FindAllString(content, -1))

	if indexHits >= 2 || fileRefs >= 3 {
		return TypeIndex
	}
	return TypeSelfContained
}

// Classification carries the classified type along with the signals that
// produced it, for reporting.
type Classification struct {
	Type           Type     `json:"type"`
	FileReferences []string `json:"file_references"`
	IndexSignals   []string `json:"index_signals_found"`
	CodeBlocks     int      `json:"code_blocks"`
}

// Explain classifies the content and reports the matched signals. At most
// five file references are included.
func Explain(content string) Classification {
	lower := strings.ToLower(content)

	var signals []string
	for _, p := range indexSignals {
		if p.MatchString(lower) {
			signals = append(signals, p.String())
		}
	}

	refs := fileRefPattern.FindAllString(content, -1)
	if len(refs) > 5 {
		refs = refs[:5]
	}

	return Classification{
		Type:           Classify(content),
		FileReferences: refs,
		IndexSignals:   signals,
		CodeBlocks:     len(codeBlockPattern.FindAllString(content, -1)),
	}
}

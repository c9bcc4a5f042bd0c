package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const indexDoc = "# Coding Rules\n\n" +
	"Quick reference for the rule categories below. Read individual rule files\n" +
	"for detailed explanations.\n\n" +
	"- `rules/naming.md`\n" +
	"- `rules/errors.md`\n" +
	"- `rules/testing.md`\n" +
	"- `rules/logging.md`\n"

const selfContainedDoc = "# Database Migration Safety\n\n" +
	"## When to Use\nWhenever you write a migration.\n\n" +
	"## Steps\n1. Check reversibility.\n2. Test locally.\n\n" +
	"## Example\n```sql\nALTER TABLE users ADD COLUMN email_address VARCHAR(255);\n```\n"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected Type
	}{
		{"index document", indexDoc, TypeIndex},
		{"self-contained document", selfContainedDoc, TypeSelfContained},
		{"empty document defaults to self-contained", "", TypeSelfContained},
		{"plain prose defaults to self-contained", "Just some notes about testing.", TypeSelfContained},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.content))
		})
	}
}

func TestClassifyIsStable(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, TypeIndex, Classify(indexDoc))
		assert.Equal(t, TypeSelfContained, Classify(selfContainedDoc))
	}
}

func TestClassifyFileReferenceThreshold(t *testing.T) {
	// Two references are not enough on their own; three are.
	two := "See `a.md` and `b.md` for details."
	three := "See `a.md`, `b.md` and `c.md` for details."

	assert.Equal(t, TypeSelfContained, Classify(two))
	assert.Equal(t, TypeIndex, Classify(three))
}

func TestClassifySignalsAreCaseInsensitive(t *testing.T) {
	doc := "QUICK REFERENCE\n\nREAD INDIVIDUAL RULE FILES for everything."
	assert.Equal(t, TypeIndex, Classify(doc))
}

func TestExplain(t *testing.T) {
	c := Explain(indexDoc)

	assert.Equal(t, TypeIndex, c.Type)
	assert.Len(t, c.FileReferences, 4)
	assert.NotEmpty(t, c.IndexSignals)
	assert.Zero(t, c.CodeBlocks)

	c = Explain(selfContainedDoc)
	assert.Equal(t, TypeSelfContained, c.Type)
	assert.Equal(t, 1, c.CodeBlocks)
}

func TestExplainCapsFileReferences(t *testing.T) {
	doc := "`a.md` `b.md` `c.md` `d.md` `e.md` `f.md` `g.md`"
	c := Explain(doc)
	assert.Len(t, c.FileReferences, 5)
}

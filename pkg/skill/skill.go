// Package skill provides the document model for skill specifications:
// structured markdown documents (SKILL.md) describing a procedure or
// capability. A document is parsed once, classified as self-contained or
// index type, and never mutated afterwards.
package skill

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// Type distinguishes the two scoring rubrics a document can fall under.
type Type string

const (
	// TypeSelfContained marks a complete standalone procedure: all guidance,
	// steps, and examples live in the one file.
	TypeSelfContained Type = "self_contained"
	// TypeIndex marks a directory document that points to other rule or
	// skill files rather than carrying the procedure itself.
	TypeIndex Type = "index"
)

// Document is an immutable skill document. Key is the stable identity used
// to correlate results across scoring, scanning, and ranking.
type Document struct {
	Key     string
	Title   string
	Repo    string
	URL     string
	Content string
	Type    Type
}

// New builds a Document from raw content, classifying its type.
func New(key, title, content string) Document {
	return Document{
		Key:     key,
		Title:   title,
		Content: content,
		Type:    Classify(content),
	}
}

// Load reads a SKILL.md file from disk. The key is derived from the path,
// the file stem or the parent directory for files literally named SKILL.md,
// so two files sharing a frontmatter `name` keep distinct identities. The
// title comes from the frontmatter `name` field, falling back to the key.
func Load(path string) (Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Document{}, errors.Wrap(err, "failed to read skill file")
	}

	key := stemTitle(path)
	title := frontmatterName(content)
	if title == "" {
		title = key
	}

	return New(key, title, string(content)), nil
}

// frontmatterName extracts the `name` field from YAML frontmatter, if any.
func frontmatterName(content []byte) string {
	if !bytes.HasPrefix(content, []byte("---")) {
		return ""
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return ""
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return ""
	}

	name, _ := metaData["name"].(string)
	return name
}

func stemTitle(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.EqualFold(base, "SKILL.md") {
		if parent := filepath.Base(filepath.Dir(path)); parent != "." && parent != string(filepath.Separator) {
			return parent
		}
	}
	return stem
}

// Package crawler fetches SKILL.md documents from GitHub repositories and
// caches them in the local store.
package crawler

import (
	"context"
	"path"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/skillvet/skillvet/pkg/logger"
	"github.com/skillvet/skillvet/pkg/skill"
)

// maxDepth bounds directory recursion inside one source.
const maxDepth = 3

// Source is one repository location to crawl for skill documents.
type Source struct {
	Repo string `mapstructure:"repo" json:"repo"`
	Path string `mapstructure:"path" json:"path"`
	Name string `mapstructure:"name" json:"name"`
}

// DefaultSources lists the public skill collections crawled when the user
// configures none.
var DefaultSources = []Source{
	{Repo: "vercel-labs/agent-skills", Path: "", Name: "vercel-labs"},
	{Repo: "affaan-m/everything-claude-code", Path: "skills", Name: "everything-claude-code"},
	{Repo: "travisvn/awesome-claude-skills", Path: "skills", Name: "awesome-claude-skills"},
}

// Crawler walks GitHub repositories looking for SKILL.md files.
type Crawler struct {
	client *github.Client
}

// New creates a crawler. An empty token falls back to unauthenticated
// requests with their tighter rate limits.
func New(ctx context.Context, token string) *Crawler {
	if token == "" {
		logger.G(ctx).Warn("no GitHub token provided, API rate limits will be restricted")
		return &Crawler{client: github.NewClient(nil)}
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Crawler{client: github.NewClient(oauth2.NewClient(ctx, ts))}
}

// Crawl fetches skill documents from every source. A source that fails does
// not abort the rest; its error is logged and crawling continues.
func (c *Crawler) Crawl(ctx context.Context, sources []Source) ([]skill.Document, error) {
	if len(sources) == 0 {
		sources = DefaultSources
	}

	var docs []skill.Document
	for _, src := range sources {
		log := logger.G(ctx).WithField("repo", src.Repo)
		log.Info("crawling skill source")

		found, err := c.crawlPath(ctx, src, src.Path, 0)
		if err != nil {
			if ctx.Err() != nil {
				return docs, errors.Wrap(err, "crawl cancelled")
			}
			log.WithError(err).Warn("failed to crawl source")
			continue
		}
		log.WithField("skills", len(found)).Info("source crawled")
		docs = append(docs, found...)
	}
	return docs, nil
}

func (c *Crawler) crawlPath(ctx context.Context, src Source, dir string, depth int) ([]skill.Document, error) {
	if depth > maxDepth {
		return nil, nil
	}

	owner, repo, err := splitRepo(src.Repo)
	if err != nil {
		return nil, err
	}

	_, entries, _, err := c.client.Repositories.GetContents(ctx, owner, repo, dir, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s/%s", src.Repo, dir)
	}

	var docs []skill.Document
	for _, entry := range entries {
		switch entry.GetType() {
		case "file":
			if !isSkillFile(entry.GetName()) {
				continue
			}
			doc, err := c.fetchSkill(ctx, src, owner, repo, entry)
			if err != nil {
				logger.G(ctx).WithError(err).WithField("path", entry.GetPath()).Warn("failed to fetch skill file")
				continue
			}
			docs = append(docs, doc)
		case "dir":
			if depth < maxDepth {
				nested, err := c.crawlPath(ctx, src, entry.GetPath(), depth+1)
				if err != nil {
					return docs, err
				}
				docs = append(docs, nested...)
			}
		}
	}
	return docs, nil
}

func (c *Crawler) fetchSkill(ctx context.Context, src Source, owner, repo string, entry *github.RepositoryContent) (skill.Document, error) {
	fileContent, _, _, err := c.client.Repositories.GetContents(ctx, owner, repo, entry.GetPath(), nil)
	if err != nil {
		return skill.Document{}, errors.Wrap(err, "failed to fetch file contents")
	}
	content, err := fileContent.GetContent()
	if err != nil {
		return skill.Document{}, errors.Wrap(err, "failed to decode file contents")
	}

	name := skillName(src, entry.GetPath())
	doc := skill.New(name, name, content)
	doc.Repo = src.Repo
	doc.URL = entry.GetHTMLURL()
	return doc, nil
}

// skillName derives a stable key from the file path: the parent directory
// name when the file sits in one, otherwise the file stem.
func skillName(src Source, filePath string) string {
	dir := path.Dir(filePath)
	if dir != "." && dir != "/" && dir != src.Path {
		return path.Base(dir)
	}
	base := path.Base(filePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

func isSkillFile(name string) bool {
	upper := strings.ToUpper(name)
	return upper == "SKILL.MD" || upper == "SKILLS.MD"
}

func splitRepo(full string) (string, string, error) {
	parts := strings.SplitN(full, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("invalid repository %q, expected owner/name", full)
	}
	return parts[0], parts[1], nil
}

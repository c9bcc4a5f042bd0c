// Package store persists crawled skill documents and their evaluation
// results in a local SQLite database. The engine consumes stored results
// read-only: a skill with a cached evaluation is not re-scored unless the
// caller forces it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/skillvet/skillvet/pkg/scorer"
	"github.com/skillvet/skillvet/pkg/security"
	"github.com/skillvet/skillvet/pkg/skill"
)

// ErrNotFound is returned when a requested skill or evaluation does not exist.
var ErrNotFound = errors.New("not found")

// Store is a SQLite-backed cache of skills and evaluations.
type Store struct {
	db   *sqlx.DB
	path string
}

// Evaluation bundles the persisted results for one skill. Score and Scan
// are nil when that half has not been run yet.
type Evaluation struct {
	SkillKey    string
	Score       *scorer.Result
	Scan        *security.ScanResult
	EvaluatedAt time.Time
}

type skillRow struct {
	Key       string `db:"key"`
	Title     string `db:"title"`
	Repo      string `db:"repo"`
	URL       string `db:"url"`
	SkillType string `db:"skill_type"`
	Content   string `db:"content"`
	CrawledAt string `db:"crawled_at"`
}

type evaluationRow struct {
	SkillKey       string          `db:"skill_key"`
	ScoreJSON      sql.NullString  `db:"score_json"`
	ScanJSON       sql.NullString  `db:"scan_json"`
	WeightedScore  sql.NullFloat64 `db:"weighted_score"`
	Verdict        sql.NullString  `db:"verdict"`
	RiskLevel      sql.NullString  `db:"risk_level"`
	Recommendation sql.NullString  `db:"recommendation"`
	EvaluatedAt    string          `db:"evaluated_at"`
}

// Open opens (creating if necessary) the database at path and ensures the
// schema is current.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	if err := configure(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to configure database")
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to migrate schema")
	}

	return &Store{db: db, path: path}, nil
}

func configure(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		pragmaCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := db.ExecContext(pragmaCtx, pragma)
		cancel()
		if err != nil {
			return errors.Wrapf(err, "failed to execute pragma: %s", pragma)
		}
	}

	var journalMode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return errors.Wrap(err, "failed to query journal mode")
	}
	if strings.ToLower(journalMode) != "wal" {
		return errors.Errorf("WAL mode not enabled, current mode: %s", journalMode)
	}
	return nil
}

func migrate(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		createSchemaVersionTable,
		createSkillsTable,
		createEvaluationsTable,
		createIndexSkillsRepo,
		createIndexEvaluationsScore,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to apply schema statement")
		}
	}

	var version sql.NullInt64
	err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&version)
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}
	if !version.Valid || version.Int64 < currentSchemaVersion {
		_, err = db.ExecContext(ctx,
			"INSERT OR REPLACE INTO schema_version (version, applied_at, description) VALUES (?, ?, ?)",
			currentSchemaVersion, time.Now().UTC().Format(time.RFC3339Nano), "skills and evaluations")
		if err != nil {
			return errors.Wrap(err, "failed to record schema version")
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// SaveSkill inserts or replaces a crawled skill document.
func (s *Store) SaveSkill(ctx context.Context, doc skill.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO skills (key, title, repo, url, skill_type, content, crawled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.Key, doc.Title, doc.Repo, doc.URL, string(doc.Type), doc.Content,
		time.Now().UTC().Format(time.RFC3339Nano))
	return errors.Wrapf(err, "failed to save skill %s", doc.Key)
}

// GetSkill loads one skill document by key.
func (s *Store) GetSkill(ctx context.Context, key string) (skill.Document, error) {
	var row skillRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM skills WHERE key = ?", key)
	if err == sql.ErrNoRows {
		return skill.Document{}, errors.Wrapf(ErrNotFound, "skill %s", key)
	}
	if err != nil {
		return skill.Document{}, errors.Wrapf(err, "failed to load skill %s", key)
	}
	return row.document(), nil
}

// ListSkills returns all stored skills ordered by key.
func (s *Store) ListSkills(ctx context.Context) ([]skill.Document, error) {
	var rows []skillRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM skills ORDER BY key"); err != nil {
		return nil, errors.Wrap(err, "failed to list skills")
	}
	docs := make([]skill.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.document())
	}
	return docs, nil
}

func (r skillRow) document() skill.Document {
	return skill.Document{
		Key:     r.Key,
		Title:   r.Title,
		Repo:    r.Repo,
		URL:     r.URL,
		Content: r.Content,
		Type:    skill.Type(r.SkillType),
	}
}

// SaveScore upserts the quality result for a skill, preserving any stored
// scan result.
func (s *Store) SaveScore(ctx context.Context, key string, result *scorer.Result) error {
	scoreJSON, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "failed to marshal score result")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (skill_key, score_json, weighted_score, verdict, evaluated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(skill_key) DO UPDATE SET
			score_json = excluded.score_json,
			weighted_score = excluded.weighted_score,
			verdict = excluded.verdict,
			evaluated_at = excluded.evaluated_at`,
		key, string(scoreJSON), result.WeightedScore, string(result.Verdict),
		time.Now().UTC().Format(time.RFC3339Nano))
	return errors.Wrapf(err, "failed to save score for %s", key)
}

// SaveScan upserts the security result for a skill, preserving any stored
// quality result.
func (s *Store) SaveScan(ctx context.Context, key string, result *security.ScanResult) error {
	scanJSON, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "failed to marshal scan result")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (skill_key, scan_json, risk_level, recommendation, evaluated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(skill_key) DO UPDATE SET
			scan_json = excluded.scan_json,
			risk_level = excluded.risk_level,
			recommendation = excluded.recommendation,
			evaluated_at = excluded.evaluated_at`,
		key, string(scanJSON), string(result.RiskLevel), string(result.Recommendation),
		time.Now().UTC().Format(time.RFC3339Nano))
	return errors.Wrapf(err, "failed to save scan for %s", key)
}

// GetEvaluation loads the stored evaluation for one skill.
func (s *Store) GetEvaluation(ctx context.Context, key string) (*Evaluation, error) {
	var row evaluationRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM evaluations WHERE skill_key = ?", key)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNotFound, "evaluation for %s", key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load evaluation for %s", key)
	}
	return row.evaluation()
}

// ListEvaluations returns all stored evaluations with a quality score of at
// least minScore, ordered by descending score.
func (s *Store) ListEvaluations(ctx context.Context, minScore float64) ([]*Evaluation, error) {
	var rows []evaluationRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM evaluations
		WHERE weighted_score IS NOT NULL AND weighted_score >= ?
		ORDER BY weighted_score DESC`, minScore)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list evaluations")
	}

	evals := make([]*Evaluation, 0, len(rows))
	for _, row := range rows {
		eval, err := row.evaluation()
		if err != nil {
			return nil, err
		}
		evals = append(evals, eval)
	}
	return evals, nil
}

func (r evaluationRow) evaluation() (*Evaluation, error) {
	eval := &Evaluation{SkillKey: r.SkillKey}

	if r.ScoreJSON.Valid {
		var result scorer.Result
		if err := json.Unmarshal([]byte(r.ScoreJSON.String), &result); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal score for %s", r.SkillKey)
		}
		eval.Score = &result
	}
	if r.ScanJSON.Valid {
		var result security.ScanResult
		if err := json.Unmarshal([]byte(r.ScanJSON.String), &result); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal scan for %s", r.SkillKey)
		}
		eval.Scan = &result
	}

	evaluatedAt, err := time.Parse(time.RFC3339Nano, r.EvaluatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse evaluation timestamp for %s", r.SkillKey)
	}
	eval.EvaluatedAt = evaluatedAt
	return eval, nil
}

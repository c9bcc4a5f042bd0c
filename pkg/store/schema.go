package store

const currentSchemaVersion = 1

const createSchemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at DATETIME NOT NULL,
    description TEXT
);
`

const createSkillsTable = `
CREATE TABLE IF NOT EXISTS skills (
    key TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    repo TEXT,
    url TEXT,
    skill_type TEXT NOT NULL,
    content TEXT NOT NULL,
    crawled_at DATETIME NOT NULL
);
`

const createEvaluationsTable = `
CREATE TABLE IF NOT EXISTS evaluations (
    skill_key TEXT PRIMARY KEY,
    score_json TEXT,
    scan_json TEXT,
    weighted_score REAL,
    verdict TEXT,
    risk_level TEXT,
    recommendation TEXT,
    evaluated_at DATETIME NOT NULL,
    FOREIGN KEY (skill_key) REFERENCES skills(key) ON DELETE CASCADE
);
`

const createIndexSkillsRepo = `
CREATE INDEX IF NOT EXISTS idx_skills_repo ON skills(repo);
`

const createIndexEvaluationsScore = `
CREATE INDEX IF NOT EXISTS idx_evaluations_score ON evaluations(weighted_score DESC);
`

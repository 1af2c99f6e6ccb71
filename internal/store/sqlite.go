// Package store persists documents, analyses, jobs and trend snapshots in
// SQLite. Core scoring code depends only on the operations exposed here,
// never on the schema.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pkozlov/agiwatch/internal/model"
)

// Store handles persistence for the crawl and analysis pipeline
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at path and applies the schema
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		url TEXT NOT NULL,
		canonical_url TEXT,
		title TEXT NOT NULL,
		content TEXT,
		content_hash TEXT NOT NULL,
		language TEXT,
		published_at DATETIME,
		fetched_at DATETIME NOT NULL,
		evidence TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source);
	CREATE INDEX IF NOT EXISTS idx_documents_fetched ON documents(fetched_at DESC);

	CREATE TABLE IF NOT EXISTS analyses (
		document_id TEXT PRIMARY KEY,
		model_score REAL NOT NULL,
		heuristic_score REAL NOT NULL,
		corroboration_penalty REAL NOT NULL DEFAULT 0,
		secrecy_boost REAL NOT NULL DEFAULT 0,
		combined_score REAL NOT NULL,
		severity TEXT NOT NULL,
		confidence REAL NOT NULL,
		indicators TEXT,
		cross_references TEXT,
		breakdown TEXT NOT NULL DEFAULT '{}',
		last_validation TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (document_id) REFERENCES documents(id)
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_severity ON analyses(severity);
	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at DESC);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		total_articles INTEGER NOT NULL DEFAULT 0,
		processed_articles INTEGER NOT NULL DEFAULT 0,
		successful_analyses INTEGER NOT NULL DEFAULT 0,
		failed_analyses INTEGER NOT NULL DEFAULT 0,
		current_article TEXT,
		average_step_ms INTEGER NOT NULL DEFAULT 0,
		estimated_remaining_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trends (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		period TEXT NOT NULL,
		window_start DATETIME NOT NULL,
		avg_score REAL NOT NULL,
		max_score REAL NOT NULL,
		min_score REAL NOT NULL,
		critical_count INTEGER NOT NULL,
		sample_count INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trends_period ON trends(period, window_start DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveDocuments upserts crawled documents and returns the count of new rows.
// Re-fetching an existing URL refreshes content, hash and evidence.
func (s *Store) SaveDocuments(docs []model.Document) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO documents (id, source, url, canonical_url, title, content, content_hash, language, published_at, fetched_at, evidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			content_hash = excluded.content_hash,
			language = excluded.language,
			fetched_at = excluded.fetched_at,
			evidence = excluded.evidence
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	newCount := 0
	for _, doc := range docs {
		evidence, err := json.Marshal(doc.Evidence)
		if err != nil {
			continue
		}

		// The upsert's UPDATE branch also reports an affected row, so
		// newness has to be decided before the write
		var known int
		if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM documents WHERE id = ?)", doc.ID).Scan(&known); err != nil {
			continue
		}

		var published sql.NullTime
		if doc.PublishedAt != nil {
			published = sql.NullTime{Time: *doc.PublishedAt, Valid: true}
		}

		_, err = stmt.Exec(
			doc.ID,
			doc.Source,
			doc.URL,
			doc.CanonicalURL,
			doc.Title,
			doc.Content,
			doc.ContentHash,
			doc.Language,
			published,
			doc.FetchedAt,
			string(evidence),
		)
		if err != nil {
			continue
		}
		if known == 0 {
			newCount++
		}
	}

	return newCount, tx.Commit()
}

// FindExisting reports whether an analysis already exists for the document.
// The batch worker uses this to keep re-runs idempotent.
func (s *Store) FindExisting(ctx context.Context, documentID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM analyses WHERE document_id = ?", documentID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UnscoredDocuments returns documents that have no analysis yet, oldest first
func (s *Store) UnscoredDocuments(limit int) ([]model.Document, error) {
	rows, err := s.db.Query(`
		SELECT d.id, d.source, d.url, d.canonical_url, d.title, d.content, d.content_hash, d.language, d.published_at, d.fetched_at, d.evidence
		FROM documents d
		LEFT JOIN analyses a ON a.document_id = d.id
		WHERE a.document_id IS NULL
		ORDER BY d.fetched_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Document returns one document by ID, or nil when absent
func (s *Store) Document(ctx context.Context, id string) (*model.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, url, canonical_url, title, content, content_hash, language, published_at, fetched_at, evidence
		FROM documents
		WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	doc, err := scanDocument(rows)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func scanDocument(rows *sql.Rows) (model.Document, error) {
	var doc model.Document
	var canonical, language, evidence sql.NullString
	var published sql.NullTime

	err := rows.Scan(
		&doc.ID,
		&doc.Source,
		&doc.URL,
		&canonical,
		&doc.Title,
		&doc.Content,
		&doc.ContentHash,
		&language,
		&published,
		&doc.FetchedAt,
		&evidence,
	)
	if err != nil {
		return doc, err
	}

	doc.CanonicalURL = canonical.String
	doc.Language = language.String
	if published.Valid {
		t := published.Time
		doc.PublishedAt = &t
	}
	if evidence.Valid && evidence.String != "" {
		json.Unmarshal([]byte(evidence.String), &doc.Evidence)
	}
	return doc, nil
}

// InsertAnalysis upserts the analysis for a document and echoes the stored
// record. Severity ratcheting happens in the caller; the store writes what
// it is given.
func (s *Store) InsertAnalysis(ctx context.Context, res model.AnalysisResult) (model.AnalysisResult, error) {
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}

	indicators, _ := json.Marshal(res.Indicators)
	crossRefs, _ := json.Marshal(res.CrossReferences)
	breakdown, err := json.Marshal(res.Breakdown)
	if err != nil {
		return res, fmt.Errorf("encoding breakdown: %w", err)
	}

	var validation sql.NullString
	if res.LastValidation != nil {
		raw, err := json.Marshal(res.LastValidation)
		if err != nil {
			return res, fmt.Errorf("encoding validation record: %w", err)
		}
		validation = sql.NullString{String: string(raw), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (document_id, model_score, heuristic_score, corroboration_penalty, secrecy_boost, combined_score, severity, confidence, indicators, cross_references, breakdown, last_validation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			model_score = excluded.model_score,
			heuristic_score = excluded.heuristic_score,
			corroboration_penalty = excluded.corroboration_penalty,
			secrecy_boost = excluded.secrecy_boost,
			combined_score = excluded.combined_score,
			severity = excluded.severity,
			confidence = excluded.confidence,
			indicators = excluded.indicators,
			cross_references = excluded.cross_references,
			breakdown = excluded.breakdown,
			last_validation = excluded.last_validation,
			created_at = excluded.created_at
	`,
		res.DocumentID,
		res.ModelScore,
		res.HeuristicScore,
		res.CorroborationPenalty,
		res.SecrecyBoost,
		res.CombinedScore,
		res.Severity.String(),
		res.Confidence,
		string(indicators),
		string(crossRefs),
		string(breakdown),
		validation,
		res.CreatedAt,
	)
	if err != nil {
		return res, err
	}
	return res, nil
}

// LatestAnalysis returns the stored analysis for a document, or nil
func (s *Store) LatestAnalysis(ctx context.Context, documentID string) (*model.AnalysisResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT document_id, model_score, heuristic_score, corroboration_penalty, secrecy_boost, combined_score, severity, confidence, indicators, cross_references, breakdown, last_validation, created_at
		FROM analyses
		WHERE document_id = ?
	`, documentID)

	res, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// TopAnalyses returns the highest-scoring analyses joined with their
// document titles, for reporting.
func (s *Store) TopAnalyses(limit int) ([]model.AnalysisResult, []string, error) {
	rows, err := s.db.Query(`
		SELECT a.document_id, a.model_score, a.heuristic_score, a.corroboration_penalty, a.secrecy_boost, a.combined_score, a.severity, a.confidence, a.indicators, a.cross_references, a.breakdown, a.last_validation, a.created_at, d.title
		FROM analyses a
		JOIN documents d ON d.id = a.document_id
		ORDER BY a.combined_score DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var results []model.AnalysisResult
	var titles []string
	for rows.Next() {
		res, title, err := scanAnalysisWithTitle(rows)
		if err != nil {
			continue
		}
		results = append(results, *res)
		titles = append(titles, title)
	}
	return results, titles, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*model.AnalysisResult, error) {
	var res model.AnalysisResult
	var severity string
	var indicators, crossRefs, breakdown, validation sql.NullString

	err := row.Scan(
		&res.DocumentID,
		&res.ModelScore,
		&res.HeuristicScore,
		&res.CorroborationPenalty,
		&res.SecrecyBoost,
		&res.CombinedScore,
		&severity,
		&res.Confidence,
		&indicators,
		&crossRefs,
		&breakdown,
		&validation,
		&res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.Severity = model.ParseSeverity(severity)
	if indicators.Valid {
		json.Unmarshal([]byte(indicators.String), &res.Indicators)
	}
	if crossRefs.Valid {
		json.Unmarshal([]byte(crossRefs.String), &res.CrossReferences)
	}
	if breakdown.Valid {
		json.Unmarshal([]byte(breakdown.String), &res.Breakdown)
	}
	if validation.Valid {
		var record model.ValidationRecord
		if json.Unmarshal([]byte(validation.String), &record) == nil {
			res.LastValidation = &record
		}
	}
	return &res, nil
}

func scanAnalysisWithTitle(rows *sql.Rows) (*model.AnalysisResult, string, error) {
	var res model.AnalysisResult
	var severity, title string
	var indicators, crossRefs, breakdown, validation sql.NullString

	err := rows.Scan(
		&res.DocumentID,
		&res.ModelScore,
		&res.HeuristicScore,
		&res.CorroborationPenalty,
		&res.SecrecyBoost,
		&res.CombinedScore,
		&severity,
		&res.Confidence,
		&indicators,
		&crossRefs,
		&breakdown,
		&validation,
		&res.CreatedAt,
		&title,
	)
	if err != nil {
		return nil, "", err
	}

	res.Severity = model.ParseSeverity(severity)
	if indicators.Valid {
		json.Unmarshal([]byte(indicators.String), &res.Indicators)
	}
	if crossRefs.Valid {
		json.Unmarshal([]byte(crossRefs.String), &res.CrossReferences)
	}
	if breakdown.Valid {
		json.Unmarshal([]byte(breakdown.String), &res.Breakdown)
	}
	if validation.Valid {
		var record model.ValidationRecord
		if json.Unmarshal([]byte(validation.String), &record) == nil {
			res.LastValidation = &record
		}
	}
	return &res, title, nil
}

// SourceNames returns the distinct source names present in the corpus.
// Corroboration checks resolve cross-references against this list.
func (s *Store) SourceNames() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT source FROM documents")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CreateJob persists a new job row
func (s *Store) CreateJob(job model.AnalysisJob) error {
	_, err := s.db.Exec(`
		INSERT INTO jobs (id, status, total_articles, processed_articles, successful_analyses, failed_analyses, current_article, average_step_ms, estimated_remaining_ms, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		job.ID,
		string(job.Status),
		job.TotalArticles,
		job.ProcessedArticles,
		job.SuccessfulAnalyses,
		job.FailedAnalyses,
		job.CurrentArticle,
		job.AverageStepMS,
		job.EstimatedRemaining.Milliseconds(),
		job.Error,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

// UpdateJobProgress rewrites the mutable counters of a job
func (s *Store) UpdateJobProgress(job model.AnalysisJob) error {
	_, err := s.db.Exec(`
		UPDATE jobs SET
			status = ?,
			total_articles = ?,
			processed_articles = ?,
			successful_analyses = ?,
			failed_analyses = ?,
			current_article = ?,
			average_step_ms = ?,
			estimated_remaining_ms = ?,
			error = ?,
			updated_at = ?
		WHERE id = ?
	`,
		string(job.Status),
		job.TotalArticles,
		job.ProcessedArticles,
		job.SuccessfulAnalyses,
		job.FailedAnalyses,
		job.CurrentArticle,
		job.AverageStepMS,
		job.EstimatedRemaining.Milliseconds(),
		job.Error,
		job.UpdatedAt,
		job.ID,
	)
	return err
}

// GetJob returns a job by ID, or nil when absent
func (s *Store) GetJob(id string) (*model.AnalysisJob, error) {
	var job model.AnalysisJob
	var status, currentArticle, errMsg sql.NullString
	var remainingMS int64

	err := s.db.QueryRow(`
		SELECT id, status, total_articles, processed_articles, successful_analyses, failed_analyses, current_article, average_step_ms, estimated_remaining_ms, error, created_at, updated_at
		FROM jobs WHERE id = ?
	`, id).Scan(
		&job.ID,
		&status,
		&job.TotalArticles,
		&job.ProcessedArticles,
		&job.SuccessfulAnalyses,
		&job.FailedAnalyses,
		&currentArticle,
		&job.AverageStepMS,
		&remainingMS,
		&errMsg,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	job.Status = model.JobStatus(status.String)
	job.CurrentArticle = currentArticle.String
	job.EstimatedRemaining = time.Duration(remainingMS) * time.Millisecond
	job.Error = errMsg.String
	return &job, nil
}

// InsertTrendSnapshot appends one aggregate row
func (s *Store) InsertTrendSnapshot(snap model.TrendSnapshot) error {
	_, err := s.db.Exec(`
		INSERT INTO trends (period, window_start, avg_score, max_score, min_score, critical_count, sample_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		snap.Period,
		snap.WindowStart,
		snap.AvgScore,
		snap.MaxScore,
		snap.MinScore,
		snap.CriticalCount,
		snap.SampleCount,
	)
	return err
}

// TrendAggregates computes score aggregates over analyses created since the
// window start.
func (s *Store) TrendAggregates(since time.Time) (model.TrendSnapshot, error) {
	var snap model.TrendSnapshot
	var avg, max, min sql.NullFloat64
	var critical sql.NullInt64

	err := s.db.QueryRow(`
		SELECT AVG(combined_score), MAX(combined_score), MIN(combined_score),
		       SUM(CASE WHEN severity = 'critical' THEN 1 ELSE 0 END),
		       COUNT(*)
		FROM analyses
		WHERE created_at >= ?
	`, since).Scan(&avg, &max, &min, &critical, &snap.SampleCount)
	if err != nil {
		return snap, err
	}

	snap.WindowStart = since
	snap.AvgScore = avg.Float64
	snap.MaxScore = max.Float64
	snap.MinScore = min.Float64
	snap.CriticalCount = int(critical.Int64)
	return snap, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

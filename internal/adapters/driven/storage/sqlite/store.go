package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/insight/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// timeLayout is fixed-width so that analyzed_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Ensure Store implements the interface.
var _ driven.AnalysisStore = (*Store)(nil)

// Store is the SQLite-backed analysis store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in dataDir.
// If dataDir is empty, defaults to ~/.insight/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".insight", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "insight.db")

	// Pragmas in the DSN apply to every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending up migrations in version order.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	currentVersion, err := s.SchemaVersion(context.Background())
	if err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// Save stores a complete analysis in one transaction, replacing any
// existing analysis with the same ID.
func (s *Store) Save(ctx context.Context, result *domain.AnalysisResult) error {
	if result == nil || result.ID == "" {
		return fmt.Errorf("%w: analysis must have an id", domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM analyses WHERE id = ?", result.ID); err != nil {
		return fmt.Errorf("replacing analysis: %w", err)
	}

	var mmName, mmDesc sql.NullString
	if result.MentalModel != nil {
		mmName = sql.NullString{String: result.MentalModel.Name, Valid: true}
		mmDesc = sql.NullString{String: result.MentalModel.Description, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analyses (id, document_name, document_type, analyzed_at, model_used,
			word_count, source_url, mental_model_name, mental_model_description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, result.ID, result.DocumentName, result.DocumentType.String(),
		result.AnalyzedAt.UTC().Format(timeLayout), result.ModelUsed,
		nullInt(result.WordCount), nullString(result.SourceURL), mmName, mmDesc)
	if err != nil {
		return fmt.Errorf("saving analysis: %w", err)
	}

	conceptStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO concepts (id, analysis_id, parent_id, position, sort_order, title,
			one_line_summary, what_this_is, why_it_matters, key_points)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing concept statement: %w", err)
	}
	defer conceptStmt.Close()

	excerptStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO excerpts (id, concept_id, position, text, location, context)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing excerpt statement: %w", err)
	}
	defer excerptStmt.Close()

	for i := range result.Concepts {
		c := &result.Concepts[i]
		keyPointsJSON, err := json.Marshal(c.KeyPoints)
		if err != nil {
			return fmt.Errorf("marshalling key points: %w", err)
		}
		if _, err := conceptStmt.ExecContext(ctx, c.ID, result.ID, nullString(c.ParentID), i, c.Order,
			c.Title, c.OneLineSummary, c.WhatThisIs, c.WhyItMatters, string(keyPointsJSON)); err != nil {
			return fmt.Errorf("saving concept %s: %w", c.ID, err)
		}

		for j, e := range c.Excerpts {
			if _, err := excerptStmt.ExecContext(ctx, e.ID, c.ID, j, e.Text, e.Location,
				nullString(e.Context)); err != nil {
				return fmt.Errorf("saving excerpt %s: %w", e.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get retrieves an analysis with all concepts and excerpts.
func (s *Store) Get(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_name, document_type, analyzed_at, model_used,
			word_count, source_url, mental_model_name, mental_model_description
		FROM analyses WHERE id = ?
	`, id)

	result, err := scanAnalysis(row)
	if err != nil {
		return nil, err
	}

	concepts, err := s.loadConcepts(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Concepts = concepts
	return result, nil
}

func (s *Store) loadConcepts(ctx context.Context, analysisID string) ([]domain.Concept, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, parent_id, sort_order, title, one_line_summary, what_this_is, why_it_matters, key_points
		FROM concepts WHERE analysis_id = ?
		ORDER BY position
	`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("querying concepts: %w", err)
	}
	defer rows.Close()

	concepts := []domain.Concept{}
	index := make(map[string]int)
	for rows.Next() {
		c, err := scanConcept(rows)
		if err != nil {
			return nil, err
		}
		index[c.ID] = len(concepts)
		concepts = append(concepts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating concepts: %w", err)
	}

	excerptRows, err := s.db.QueryContext(ctx, `
		SELECT e.concept_id, e.id, e.text, e.location, e.context
		FROM excerpts e JOIN concepts c ON c.id = e.concept_id
		WHERE c.analysis_id = ?
		ORDER BY c.position, e.position
	`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("querying excerpts: %w", err)
	}
	defer excerptRows.Close()

	for excerptRows.Next() {
		var conceptID string
		var e domain.Excerpt
		var excerptContext sql.NullString
		if err := excerptRows.Scan(&conceptID, &e.ID, &e.Text, &e.Location, &excerptContext); err != nil {
			return nil, fmt.Errorf("scanning excerpt: %w", err)
		}
		if excerptContext.Valid {
			e.Context = &excerptContext.String
		}
		if i, ok := index[conceptID]; ok {
			concepts[i].Excerpts = append(concepts[i].Excerpts, e)
		}
	}
	if err := excerptRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating excerpts: %w", err)
	}

	return concepts, nil
}

// List returns summaries of all analyses, newest first.
func (s *Store) List(ctx context.Context) ([]domain.AnalysisSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.document_name, a.document_type, a.analyzed_at, a.model_used, a.word_count,
			(SELECT COUNT(*) FROM concepts c WHERE c.analysis_id = a.id)
		FROM analyses a
		ORDER BY a.analyzed_at DESC, a.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	summaries := []domain.AnalysisSummary{}
	for rows.Next() {
		var sum domain.AnalysisSummary
		var docType, analyzedAt string
		var wordCount sql.NullInt64
		if err := rows.Scan(&sum.ID, &sum.DocumentName, &docType, &analyzedAt, &sum.ModelUsed,
			&wordCount, &sum.ConceptCount); err != nil {
			return nil, fmt.Errorf("scanning analysis summary: %w", err)
		}
		sum.DocumentType = domain.DocumentType(docType)
		if sum.AnalyzedAt, err = parseTime(analyzedAt); err != nil {
			return nil, err
		}
		sum.WordCount = intPtr(wordCount)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating analyses: %w", err)
	}
	return summaries, nil
}

// Delete removes an analysis; concepts and excerpts cascade.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM analyses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting analysis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting analysis: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanAnalysis scans a single analysis row without concepts.
func scanAnalysis(row *sql.Row) (*domain.AnalysisResult, error) {
	var r domain.AnalysisResult
	var docType, analyzedAt string
	var wordCount sql.NullInt64
	var sourceURL, mmName, mmDesc sql.NullString

	if err := row.Scan(&r.ID, &r.DocumentName, &docType, &analyzedAt, &r.ModelUsed,
		&wordCount, &sourceURL, &mmName, &mmDesc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning analysis: %w", err)
	}

	r.DocumentType = domain.DocumentType(docType)
	t, err := parseTime(analyzedAt)
	if err != nil {
		return nil, err
	}
	r.AnalyzedAt = t
	r.WordCount = intPtr(wordCount)
	if sourceURL.Valid {
		r.SourceURL = &sourceURL.String
	}
	if mmName.Valid {
		r.MentalModel = &domain.MentalModel{Name: mmName.String, Description: mmDesc.String}
	}
	return &r, nil
}

// scanConcept scans a concept from *sql.Rows.
func scanConcept(rows *sql.Rows) (*domain.Concept, error) {
	var c domain.Concept
	var parentID sql.NullString
	var keyPointsJSON string

	if err := rows.Scan(&c.ID, &parentID, &c.Order, &c.Title, &c.OneLineSummary,
		&c.WhatThisIs, &c.WhyItMatters, &keyPointsJSON); err != nil {
		return nil, fmt.Errorf("scanning concept: %w", err)
	}
	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	if keyPointsJSON != "" && keyPointsJSON != jsonNull {
		if err := json.Unmarshal([]byte(keyPointsJSON), &c.KeyPoints); err != nil {
			return nil, fmt.Errorf("unmarshaling key points: %w", err)
		}
	}
	c.Excerpts = []domain.Excerpt{}
	return &c, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing analyzed_at %q: %w", s, err)
	}
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

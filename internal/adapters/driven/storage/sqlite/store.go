package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/newsdesk-io/newsdesk/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ArticleStore = (*Store)(nil)

// Store is a SQLite-backed article store: the dedup index plus the sole
// writer of terminal article bundles.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.newsdesk/data/newsdesk.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".newsdesk", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "newsdesk.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
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

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// FindByHash returns the canonical ID for an exact content hash match.
func (s *Store) FindByHash(ctx context.Context, hash string) (string, error) {
	query, args, err := sq.Select("id").
		From("canonical_articles").
		Where(sq.Eq{"content_hash": hash}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("building query: %w", err)
	}

	var id string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("scanning canonical id: %w", err)
	}
	return id, nil
}

// RecentCandidates returns embedded canonical articles ingested since the
// given time.
func (s *Store) RecentCandidates(ctx context.Context, since time.Time) ([]driven.DedupCandidate, error) {
	query, args, err := sq.Select("id", "embedding").
		From("canonical_articles").
		Where(sq.GtOrEq{"ingested_at": since.UTC()}).
		Where(sq.NotEq{"embedding": nil}).
		OrderBy("ingested_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	var candidates []driven.DedupCandidate //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c driven.DedupCandidate
		var blob []byte
		if err := rows.Scan(&c.ArticleID, &blob); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		c.Embedding = bytesToFloat32Slice(blob)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}
	return candidates, nil
}

// SaveCanonical records a newly minted canonical identity. A hash that
// landed concurrently surfaces as domain.ErrAlreadyExists.
func (s *Store) SaveCanonical(ctx context.Context, article domain.CanonicalArticle) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO canonical_articles
			(id, content_hash, title, content, language, type, link, source_domain, published_at, embedding, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, article.ID, article.ContentHash, article.Title, article.Content,
		article.Language, string(article.Type), article.Link, article.SourceDomain,
		article.PublishedAt.UTC(), float32SliceToBytes(article.Embedding), time.Now().UTC())

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("saving canonical article: %w", err)
	}
	return nil
}

// MarkDuplicate records that a link resolved to an existing identity.
func (s *Store) MarkDuplicate(ctx context.Context, link, duplicateOf string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO duplicate_refs (link, duplicate_of, marked_at)
		VALUES (?, ?, ?)
		ON CONFLICT(link) DO UPDATE SET
			duplicate_of = excluded.duplicate_of,
			marked_at = excluded.marked_at
	`, link, duplicateOf, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("marking duplicate: %w", err)
	}
	return nil
}

// Commit atomically persists a terminal article bundle: the updated
// canonical content, the plan, the enriched draft with its terminal
// decision, and the full review history. A repeat commit for the same
// identity returns the existing ID without touching the stored record.
func (s *Store) Commit(ctx context.Context, bundle domain.ArticleBundle) (string, error) {
	id := bundle.Enriched.ArticleID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var existing string
	err = tx.QueryRowContext(ctx,
		"SELECT article_id FROM enriched_articles WHERE article_id = ?", id).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("checking existing commit: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE canonical_articles SET content = ?, language = ?, type = ? WHERE id = ?
	`, bundle.Canonical.Content, bundle.Canonical.Language, string(bundle.Canonical.Type), id); err != nil {
		return "", fmt.Errorf("updating canonical article: %w", err)
	}

	if err := insertPlan(ctx, tx, bundle.Plan); err != nil {
		return "", err
	}
	if err := insertEnriched(ctx, tx, bundle.Enriched, bundle.Terminal); err != nil {
		return "", err
	}
	for _, outcome := range bundle.History {
		if err := insertOutcome(ctx, tx, outcome); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}
	return id, nil
}

func insertPlan(ctx context.Context, tx *sql.Tx, plan domain.ArticlePlan) error {
	if plan.ArticleID == "" {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO article_plans (article_id, headline, summary, keywords, categories, search_queries)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(article_id) DO NOTHING
	`, plan.ArticleID, plan.Headline, plan.Summary,
		mustJSON(plan.Keywords), mustJSON(plan.Categories), mustJSON(plan.SearchQueries))
	if err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}
	return nil
}

func insertEnriched(ctx context.Context, tx *sql.Tx, art domain.EnrichedArticle, terminal domain.Decision) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO enriched_articles
			(article_id, title, lead, summary, body, language, keywords, categories,
			 locations, refs, status, revision_count, featured, interview_needed,
			 terminal, generated_at, committed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, art.ArticleID, art.Title, art.Lead, art.Summary, art.Body, art.Language,
		mustJSON(art.Keywords), mustJSON(art.Categories),
		mustJSON(art.Locations), mustJSON(art.References),
		string(art.Status), art.RevisionCount, art.Featured, art.InterviewNeeded,
		string(terminal), art.GeneratedAt.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving enriched article: %w", err)
	}
	return nil
}

func insertOutcome(ctx context.Context, tx *sql.Tx, o domain.ReviewOutcome) error {
	var warningJSON any
	if o.Warning != nil {
		warningJSON = mustJSON(o.Warning)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO review_outcomes
			(article_id, revision_count, decision, reject_reason, reconsideration,
			 reviewer, checked_criteria, failed_criteria, steps, explanation,
			 issues, warning, headline, interview, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(article_id, revision_count) DO NOTHING
	`, o.ArticleID, o.RevisionCount, string(o.Decision), o.RejectReason, o.Reconsideration,
		o.Reviewer, mustJSON(o.CheckedCriteria), mustJSON(o.FailedCriteria),
		mustJSON(o.Steps), o.Explanation, mustJSON(o.Issues), warningJSON,
		mustJSON(o.Headline), mustJSON(o.Interview), o.ReviewedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving review outcome: %w", err)
	}
	return nil
}

// EnrichedByStatus returns committed articles filtered by terminal decision
// and optional limit, newest first. Used by reporting commands.
func (s *Store) EnrichedByStatus(ctx context.Context, terminal domain.Decision, limit int) ([]domain.EnrichedArticle, error) {
	builder := sq.Select(
		"article_id", "title", "lead", "summary", "body", "language",
		"keywords", "categories", "locations", "refs", "status",
		"revision_count", "featured", "interview_needed", "generated_at").
		From("enriched_articles").
		OrderBy("committed_at DESC")
	if terminal != "" {
		builder = builder.Where(sq.Eq{"terminal": string(terminal)})
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying enriched articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.EnrichedArticle //nolint:prealloc // size unknown from query
	for rows.Next() {
		art, err := scanEnriched(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, art)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating enriched articles: %w", err)
	}
	return articles, nil
}

// History returns the full review outcome history for one article, ordered
// by revision count.
func (s *Store) History(ctx context.Context, articleID string) ([]domain.ReviewOutcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT article_id, revision_count, decision, reject_reason, reconsideration,
		       reviewer, checked_criteria, failed_criteria, steps, explanation,
		       issues, warning, headline, interview, reviewed_at
		FROM review_outcomes WHERE article_id = ?
		ORDER BY revision_count
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("querying review outcomes: %w", err)
	}
	defer rows.Close()

	var history []domain.ReviewOutcome //nolint:prealloc // size unknown from query
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating review outcomes: %w", err)
	}
	return history, nil
}

// ==================== Helper Functions ====================

func scanEnriched(rows *sql.Rows) (domain.EnrichedArticle, error) {
	var art domain.EnrichedArticle
	var status string
	var keywords, categories, locations, refs string
	var generatedAt sql.NullTime

	if err := rows.Scan(&art.ArticleID, &art.Title, &art.Lead, &art.Summary, &art.Body,
		&art.Language, &keywords, &categories, &locations, &refs, &status,
		&art.RevisionCount, &art.Featured, &art.InterviewNeeded, &generatedAt); err != nil {
		return domain.EnrichedArticle{}, fmt.Errorf("scanning enriched article: %w", err)
	}

	art.Status = domain.EnrichmentStatus(status)
	if generatedAt.Valid {
		art.GeneratedAt = generatedAt.Time
	}
	for _, col := range []struct {
		raw string
		dst any
	}{
		{keywords, &art.Keywords},
		{categories, &art.Categories},
		{locations, &art.Locations},
		{refs, &art.References},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return domain.EnrichedArticle{}, fmt.Errorf("unmarshaling enriched column: %w", err)
		}
	}
	return art, nil
}

func scanOutcome(rows *sql.Rows) (domain.ReviewOutcome, error) {
	var o domain.ReviewOutcome
	var decision string
	var checked, failed, steps, issues, headline, interview string
	var warning sql.NullString
	var reviewedAt sql.NullTime

	if err := rows.Scan(&o.ArticleID, &o.RevisionCount, &decision, &o.RejectReason,
		&o.Reconsideration, &o.Reviewer, &checked, &failed, &steps, &o.Explanation,
		&issues, &warning, &headline, &interview, &reviewedAt); err != nil {
		return domain.ReviewOutcome{}, fmt.Errorf("scanning review outcome: %w", err)
	}

	o.Decision = domain.Decision(decision)
	if reviewedAt.Valid {
		o.ReviewedAt = reviewedAt.Time
	}
	for _, col := range []struct {
		raw string
		dst any
	}{
		{checked, &o.CheckedCriteria},
		{failed, &o.FailedCriteria},
		{steps, &o.Steps},
		{issues, &o.Issues},
		{headline, &o.Headline},
		{interview, &o.Interview},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return domain.ReviewOutcome{}, fmt.Errorf("unmarshaling outcome column: %w", err)
		}
	}
	if warning.Valid && warning.String != "" {
		var w domain.EditorialWarning
		if err := json.Unmarshal([]byte(warning.String), &w); err != nil {
			return domain.ReviewOutcome{}, fmt.Errorf("unmarshaling warning: %w", err)
		}
		o.Warning = &w
	}
	return o, nil
}

// mustJSON marshals a value that cannot fail (domain types only).
func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

// isUniqueViolation reports whether the error is a SQLite unique
// constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

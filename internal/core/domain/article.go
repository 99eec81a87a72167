// Package domain holds the pure data model for the newsdesk pipeline.
// Types here carry no behaviour beyond construction and normalisation
// helpers; all I/O lives behind the driven ports.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode"
)

// ArticleType classifies what kind of item a feed produced.
type ArticleType string

const (
	TypeNews         ArticleType = "news"
	TypePressRelease ArticleType = "press_release"
	TypeBlog         ArticleType = "blog"
	TypeEvent        ArticleType = "event"
	TypeDecision     ArticleType = "decision"
	TypeOther        ArticleType = "other"
)

// RawArticle is one item as it arrived from a feed. Immutable once created;
// identity is the source URL plus publish timestamp.
type RawArticle struct {
	// Title is the feed item title.
	Title string

	// Link is the source URL of the item.
	Link string

	// Summary is the feed-provided summary or description, if any.
	Summary string

	// Body is the raw body text from the feed, if the feed carries content.
	Body string

	// GUID is the feed-provided unique identifier, if any.
	GUID string

	// PublishedAt is the publication timestamp from the feed.
	PublishedAt time.Time

	// SourceDomain is the host the item was published on, e.g. "yle.fi".
	SourceDomain string

	// FeedName is the display name of the feed that produced the item.
	FeedName string

	// FeedCategory is the category hint configured for the feed.
	FeedCategory ArticleType
}

// CanonicalArticle is the deduplicated, content-addressed representation of
// one news item. Created by the extraction stage and never overwritten by
// later stages; enrichment only ever adds new records alongside it.
type CanonicalArticle struct {
	// ID is the minted canonical identity.
	ID string

	// ContentHash is the deterministic hash of the normalised title and body.
	// Unique across the system: two raw articles with equal hashes resolve
	// to exactly one CanonicalArticle.
	ContentHash string

	// Title is the original headline.
	Title string

	// Content is the full extracted body text.
	Content string

	// Language is the detected content language (ISO 639-1).
	Language string

	// Type is the classified article type.
	Type ArticleType

	// Link is the source URL.
	Link string

	// SourceDomain is the host the article was published on.
	SourceDomain string

	// PublishedAt is the original publication timestamp.
	PublishedAt time.Time

	// Embedding is the semantic fingerprint used for near-duplicate checks.
	// Nil when the embedding service was unavailable (degraded dedup).
	Embedding []float32
}

// ArticleReference cites an external article used during enrichment.
type ArticleReference struct {
	// Title of the referenced page.
	Title string

	// URL of the referenced page.
	URL string
}

// LocationTag places an article in a geographic hierarchy. Any level may be
// empty; a tag with only a country is valid.
type LocationTag struct {
	Continent string
	Country   string
	Region    string
	City      string
}

// EnrichmentStatus records how enrichment went for one article.
type EnrichmentStatus string

const (
	// EnrichmentPending means enrichment has not been attempted.
	EnrichmentPending EnrichmentStatus = "pending"

	// EnrichmentSuccess means the article was enriched with search context.
	EnrichmentSuccess EnrichmentStatus = "success"

	// EnrichmentDegraded means generation used only the original content
	// because no usable search results existed.
	EnrichmentDegraded EnrichmentStatus = "degraded"

	// EnrichmentError means a technical error occurred during enrichment.
	EnrichmentError EnrichmentStatus = "error"
)

// EnrichedArticle is the generated article draft. Content fields are
// immutable after generation except through an editorial revision, which
// replaces content while preserving ArticleID. Featured and InterviewNeeded
// are the only fields the editorial subgraph may flip.
type EnrichedArticle struct {
	// ArticleID references exactly one CanonicalArticle.
	ArticleID string

	// Title is the generated headline.
	Title string

	// Lead is the generated lead paragraph.
	Lead string

	// Summary is the generated short summary.
	Summary string

	// Body is the generated article body in markdown.
	Body string

	// Language matches the canonical article language.
	Language string

	// Keywords assigned during planning and generation.
	Keywords []string

	// Categories assigned during planning and generation.
	Categories []string

	// Locations mentioned in the article.
	Locations []LocationTag

	// References cites the external pages used for enrichment.
	References []ArticleReference

	// Status records whether enrichment used search context or degraded
	// to original-content-only generation.
	Status EnrichmentStatus

	// RevisionCount is how many editorial revisions this draft has been
	// through. Strictly increasing, bounded by the configured maximum.
	RevisionCount int

	// Featured marks front-page placement. Set only on the publish path
	// from the headline newsworthiness assessment.
	Featured bool

	// InterviewNeeded marks the article for interview follow-up. Set only
	// on the interview path.
	InterviewNeeded bool

	// GeneratedAt is when this draft (or revision) was produced.
	GeneratedAt time.Time
}

// NormalizeContent collapses whitespace and lowercases text so that
// semantically identical articles hash identically regardless of feed
// formatting differences.
func NormalizeContent(title, body string) string {
	var b strings.Builder
	b.Grow(len(title) + len(body) + 1)

	appendNormalized := func(s string) {
		space := false
		for _, r := range strings.TrimSpace(s) {
			if unicode.IsSpace(r) {
				space = true
				continue
			}
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(unicode.ToLower(r))
		}
	}

	appendNormalized(title)
	b.WriteByte('\n')
	appendNormalized(body)
	return b.String()
}

// ContentHash returns the hex-encoded SHA-256 of the normalised title+body.
func ContentHash(title, body string) string {
	sum := sha256.Sum256([]byte(NormalizeContent(title, body)))
	return hex.EncodeToString(sum[:])
}

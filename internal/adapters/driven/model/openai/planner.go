package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
)

// Ensure Model implements the interface.
var _ driven.PlannerModel = (*Model)(nil)

const plannerSystemPrompt = `You are a news editor planning the enrichment of an article.
Given the original article, produce a JSON object with exactly these keys:
  "headline": a new, neutral headline
  "summary": a 1-2 sentence summary of the core message
  "keywords": the 5-7 most important keywords
  "categories": the categories the article belongs to (e.g. "Technology", "Politics")
  "search_queries": 2-3 web search queries for background context, in the article's language
Respond with JSON only.`

// planResponse is the planner's JSON output format.
type planResponse struct {
	Headline      string   `json:"headline"`
	Summary       string   `json:"summary"`
	Keywords      []string `json:"keywords"`
	Categories    []string `json:"categories"`
	SearchQueries []string `json:"search_queries"`
}

// Plan produces the enrichment plan for one canonical article.
func (m *Model) Plan(ctx context.Context, article domain.CanonicalArticle) (domain.ArticlePlan, error) {
	var user strings.Builder
	fmt.Fprintf(&user, "Title: %s\n", article.Title)
	fmt.Fprintf(&user, "Type: %s\n", article.Type)
	if article.Language != "" {
		fmt.Fprintf(&user, "Language: %s\n", article.Language)
	}
	fmt.Fprintf(&user, "\n%s\n", article.Content)

	var resp planResponse
	if err := m.completeJSON(ctx, plannerSystemPrompt, user.String(), 0.3, &resp); err != nil {
		return domain.ArticlePlan{}, fmt.Errorf("plan: %w", err)
	}

	if resp.Headline == "" || len(resp.SearchQueries) == 0 {
		return domain.ArticlePlan{}, fmt.Errorf("plan: incomplete model output")
	}

	return domain.ArticlePlan{
		ArticleID:     article.ID,
		Headline:      resp.Headline,
		Summary:       resp.Summary,
		Keywords:      resp.Keywords,
		Categories:    resp.Categories,
		SearchQueries: resp.SearchQueries,
	}, nil
}

package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
	"github.com/newsdesk-io/newsdesk/internal/core/ports/driven"
)

// Ensure Model implements the interface.
var _ driven.GenerationModel = (*Model)(nil)

const generatorSystemPrompt = `You are a journalist writing a news article.
You receive the original source article, an enrichment plan and optional
background context from web searches. Write a new article in the original
article's language. Only use facts present in the source article or the
background context; never invent facts.
Produce a JSON object with exactly these keys:
  "title": the headline
  "lead": the lead paragraph
  "summary": a short summary
  "body": the article body in markdown
  "keywords": final keyword list
  "categories": final category list
  "locations": list of {"continent", "country", "region", "city"} objects, any level may be empty
  "references": list of {"title", "url"} objects citing used background pages
Respond with JSON only.`

// generationResponse is the generator's JSON output format.
type generationResponse struct {
	Title      string   `json:"title"`
	Lead       string   `json:"lead"`
	Summary    string   `json:"summary"`
	Body       string   `json:"body"`
	Keywords   []string `json:"keywords"`
	Categories []string `json:"categories"`
	Locations  []struct {
		Continent string `json:"continent"`
		Country   string `json:"country"`
		Region    string `json:"region"`
		City      string `json:"city"`
	} `json:"locations"`
	References []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"references"`
}

// Generate produces the enriched article draft.
func (m *Model) Generate(ctx context.Context, input driven.GenerationInput) (domain.EnrichedArticle, error) {
	var user strings.Builder
	fmt.Fprintf(&user, "## Source article\nTitle: %s\n\n%s\n", input.Article.Title, input.Article.Content)
	fmt.Fprintf(&user, "\n## Plan\nHeadline candidate: %s\nSummary: %s\n", input.Plan.Headline, input.Plan.Summary)
	fmt.Fprintf(&user, "Keywords: %s\n", strings.Join(input.Plan.Keywords, ", "))
	fmt.Fprintf(&user, "Categories: %s\n", strings.Join(input.Plan.Categories, ", "))

	wrotePages := false
	for _, result := range input.SearchResults {
		for _, page := range result.Pages {
			if !wrotePages {
				user.WriteString("\n## Background context\n")
				wrotePages = true
			}
			fmt.Fprintf(&user, "### %s\nURL: %s\n%s\n\n", page.Title, page.URL, page.Text)
		}
	}
	if !wrotePages {
		user.WriteString("\n## Background context\nNone available. Write from the source article only.\n")
	}

	var resp generationResponse
	if err := m.completeJSON(ctx, generatorSystemPrompt, user.String(), 0.7, &resp); err != nil {
		return domain.EnrichedArticle{}, fmt.Errorf("generate: %w", err)
	}

	if resp.Title == "" || resp.Body == "" {
		return domain.EnrichedArticle{}, fmt.Errorf("generate: incomplete model output")
	}

	draft := domain.EnrichedArticle{
		ArticleID:  input.Article.ID,
		Title:      resp.Title,
		Lead:       resp.Lead,
		Summary:    resp.Summary,
		Body:       resp.Body,
		Keywords:   resp.Keywords,
		Categories: resp.Categories,
	}
	for _, loc := range resp.Locations {
		draft.Locations = append(draft.Locations, domain.LocationTag{
			Continent: loc.Continent,
			Country:   loc.Country,
			Region:    loc.Region,
			City:      loc.City,
		})
	}
	for _, ref := range resp.References {
		draft.References = append(draft.References, domain.ArticleReference{
			Title: ref.Title,
			URL:   ref.URL,
		})
	}
	return draft, nil
}

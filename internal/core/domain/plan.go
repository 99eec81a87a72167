package domain

// ArticlePlan is the enrichment plan for one canonical article. Produced
// once by the planning stage and read-only afterwards.
type ArticlePlan struct {
	// ArticleID references exactly one CanonicalArticle (1:1).
	ArticleID string

	// Headline is a new, neutral headline candidate.
	Headline string

	// Summary is a 1-2 sentence summary of the article's core message.
	Summary string

	// Keywords are the 5-7 most important keywords for the content.
	Keywords []string

	// Categories the article belongs to, e.g. "Technology", "Politics".
	Categories []string

	// SearchQueries is an ordered list of web search queries, in the
	// article's language. Under the first-query-only policy, queries past
	// the first are recorded but never issued.
	SearchQueries []string
}

// WebPage is one parsed external page returned by the search provider.
type WebPage struct {
	// Title of the page.
	Title string

	// URL of the page.
	URL string

	// Text is the extracted page text.
	Text string
}

// SearchResult is the parsed content for one (article, query) pair.
// Results are grouped per article and used only as read input to
// generation; they are never merged into the canonical article.
type SearchResult struct {
	// ArticleID identifies the article the query belonged to.
	ArticleID string

	// QueryIndex is the position of the query in the plan's ordered list.
	QueryIndex int

	// Query is the query text that was issued.
	Query string

	// Pages are the parsed result pages, possibly empty.
	Pages []WebPage
}

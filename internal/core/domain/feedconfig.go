package domain

// FeedConfig describes one configured RSS/Atom feed.
type FeedConfig struct {
	// Name is the display name of the feed.
	Name string `yaml:"name"`

	// URL is the feed address.
	URL string `yaml:"url"`

	// Category hints at the article type this feed produces, e.g.
	// "press_release" for an organisation's announcement feed.
	Category ArticleType `yaml:"category"`

	// Language is the expected content language (ISO 639-1), used when
	// detection fails.
	Language string `yaml:"language"`
}

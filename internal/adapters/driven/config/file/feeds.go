package file

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/newsdesk-io/newsdesk/internal/core/domain"
)

// feedsFile is the YAML feed list format.
type feedsFile struct {
	Feeds []domain.FeedConfig `yaml:"feeds"`
}

// LoadFeeds reads the feed list from a YAML file. Entries without a URL
// are rejected; a missing name defaults to the URL.
func LoadFeeds(path string) ([]domain.FeedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feeds file: %w", err)
	}

	var parsed feedsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing feeds file: %w", err)
	}

	for i := range parsed.Feeds {
		feed := &parsed.Feeds[i]
		if feed.URL == "" {
			return nil, fmt.Errorf("%w: feed %d has no url", domain.ErrInvalidInput, i)
		}
		if feed.Name == "" {
			feed.Name = feed.URL
		}
	}
	return parsed.Feeds, nil
}

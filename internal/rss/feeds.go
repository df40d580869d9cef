package rss

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/goodnews/internal/news"
)

//go:embed default_feeds.yaml
var defaultFeedsYAML []byte

// FeedsConfig is the YAML feed list:
//
//	feeds:
//	  - name: Positive News
//	    url: https://www.positive.news/feed/
//	    homepage: https://www.positive.news/
type FeedsConfig struct {
	Feeds []news.FeedSource `yaml:"feeds"`
}

// DefaultFeeds returns the built-in feed list.
func DefaultFeeds() []news.FeedSource {
	feeds, err := ParseFeeds(defaultFeedsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded feed list is invalid: %v", err))
	}
	return feeds
}

// LoadFeeds reads the feed list from a YAML file. A missing file yields the
// built-in list.
func LoadFeeds(path string) ([]news.FeedSource, error) {
	if path == "" {
		return DefaultFeeds(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultFeeds(), nil
		}
		return nil, fmt.Errorf("reading feeds %s: %w", path, err)
	}
	feeds, err := ParseFeeds(data)
	if err != nil {
		return nil, fmt.Errorf("loading feeds %s: %w", path, err)
	}
	return feeds, nil
}

// ParseFeeds decodes and validates a YAML feed list.
func ParseFeeds(data []byte) ([]news.FeedSource, error) {
	var cfg FeedsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing feeds: %w", err)
	}

	seen := make(map[string]bool)
	var errs []error
	for i, f := range cfg.Feeds {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("feed %d: name is required", i))
		} else if seen[f.Name] {
			errs = append(errs, fmt.Errorf("feed %d: duplicate name %q", i, f.Name))
		}
		seen[f.Name] = true

		if err := validateURL(f.URL); err != nil {
			errs = append(errs, fmt.Errorf("feed %d (%s): %w", i, f.Name, err))
		}
		if f.Homepage != "" {
			if err := validateURL(f.Homepage); err != nil {
				errs = append(errs, fmt.Errorf("feed %d (%s) homepage: %w", i, f.Name, err))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg.Feeds, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}

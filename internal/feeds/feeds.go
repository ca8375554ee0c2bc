package feeds

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Feed describes one configured source feed. File order is significant: it is
// the priority order used when two feeds carry the same canonical URL.
type Feed struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Kind        string `yaml:"kind"`
	Region      string `yaml:"region"`
	Reliability int    `yaml:"reliability"`
	Paywall     bool   `yaml:"paywall"`
	MockFile    string `yaml:"mock_file"`
}

type Registry struct {
	Feeds []Feed `yaml:"feeds"`
}

// LoadRegistry reads and validates the feeds YAML file.
func LoadRegistry(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds file %q: %w", path, err)
	}

	var registry Registry
	if err := yaml.Unmarshal(raw, &registry); err != nil {
		return nil, fmt.Errorf("parse feeds file %q: %w", path, err)
	}

	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("feeds file %q: %w", path, err)
	}
	return &registry, nil
}

func (r *Registry) Validate() error {
	if r == nil || len(r.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}

	seen := make(map[string]struct{}, len(r.Feeds))
	for i := range r.Feeds {
		feed := &r.Feeds[i]
		feed.Name = strings.TrimSpace(feed.Name)
		feed.URL = strings.TrimSpace(feed.URL)
		feed.Kind = strings.TrimSpace(strings.ToLower(feed.Kind))
		feed.Region = strings.TrimSpace(feed.Region)

		if feed.Name == "" {
			return fmt.Errorf("feeds[%d]: name is required", i)
		}
		if feed.URL == "" && strings.TrimSpace(feed.MockFile) == "" {
			return fmt.Errorf("feeds[%d] (%s): url or mock_file is required", i, feed.Name)
		}
		switch feed.Kind {
		case "", "auto":
			feed.Kind = "auto"
		case "rss", "atom":
		default:
			return fmt.Errorf("feeds[%d] (%s): kind must be rss, atom or auto", i, feed.Name)
		}
		if feed.Reliability < 0 || feed.Reliability > 100 {
			return fmt.Errorf("feeds[%d] (%s): reliability must be 0-100", i, feed.Name)
		}

		key := strings.ToLower(feed.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("feeds[%d]: duplicate feed name %q", i, feed.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

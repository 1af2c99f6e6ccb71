package model

// Source describes one configured content source
type Source struct {
	Name         string    `json:"name" yaml:"name" mapstructure:"name"`
	URL          string    `json:"url" yaml:"url" mapstructure:"url"`                                              // Site root or listing page
	FeedURLs     []string  `json:"feed_urls,omitempty" yaml:"feed_urls,omitempty" mapstructure:"feed_urls"`        // Candidate RSS/Atom feeds
	Selectors    Selectors `json:"selectors,omitempty" yaml:"selectors,omitempty" mapstructure:"selectors"`        // CSS selectors for direct extraction
	RenderFirst  bool      `json:"render_first,omitempty" yaml:"render_first,omitempty" mapstructure:"render_first"` // SPA: try headless rendering before direct fetch
	Blocked      bool      `json:"blocked,omitempty" yaml:"blocked,omitempty" mapstructure:"blocked"`              // Known to reject simple HTTP clients
	AutoDiscover bool      `json:"auto_discover,omitempty" yaml:"auto_discover,omitempty" mapstructure:"auto_discover"` // Use heuristic DOM scan and sitemap discovery
	Language     string    `json:"language,omitempty" yaml:"language,omitempty" mapstructure:"language"`
}

// Selectors is the CSS-selector triple for generic element extraction
type Selectors struct {
	Item    string `json:"item,omitempty" yaml:"item,omitempty" mapstructure:"item"`
	Title   string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Content string `json:"content,omitempty" yaml:"content,omitempty" mapstructure:"content"`
	Link    string `json:"link,omitempty" yaml:"link,omitempty" mapstructure:"link"`
}

// HasSelectors reports whether a usable selector triple is configured
func (s Selectors) HasSelectors() bool {
	return s.Item != "" && s.Title != ""
}

package model

import "time"

// Config is the complete agiwatch configuration
type Config struct {
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Crawl    CrawlConfig    `yaml:"crawl" mapstructure:"crawl"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Sources  []Source       `yaml:"sources" mapstructure:"sources"`
}

// HTTPConfig controls the plain HTTP fetch path
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	Proxy        string        `yaml:"proxy" mapstructure:"proxy"` // Empty defers to HTTP_PROXY/HTTPS_PROXY
}

// CrawlConfig controls the acquisition strategy chain
type CrawlConfig struct {
	RequestInterval   time.Duration `yaml:"request_interval" mapstructure:"request_interval"`     // Shared limiter: one request per interval
	Burst             int           `yaml:"burst" mapstructure:"burst"`                           // Limiter burst
	RenderRetries     int           `yaml:"render_retries" mapstructure:"render_retries"`         // Headless attempts for blocked sources
	NavigationTimeout time.Duration `yaml:"navigation_timeout" mapstructure:"navigation_timeout"` // Per-page render bound
	MaxSitemapURLs    int           `yaml:"max_sitemap_urls" mapstructure:"max_sitemap_urls"`     // Cap on sitemap-discovered articles
	MaxScanArticles   int           `yaml:"max_scan_articles" mapstructure:"max_scan_articles"`   // Cap on DOM-scan results
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"` // Fetched-page cache
	CacheDir          string        `yaml:"cache_dir" mapstructure:"cache_dir"` // Empty keeps the page cache memory-only
}

// AnalysisConfig controls the batch scoring pipeline
type AnalysisConfig struct {
	BatchSize            int           `yaml:"batch_size" mapstructure:"batch_size"`
	JobLimit             int           `yaml:"job_limit" mapstructure:"job_limit"` // Max unscored documents pulled per job
	StepTimeout          time.Duration `yaml:"step_timeout" mapstructure:"step_timeout"`
	BatchTimeout         time.Duration `yaml:"batch_timeout" mapstructure:"batch_timeout"`
	HeuristicMax         float64       `yaml:"heuristic_max" mapstructure:"heuristic_max"`
	ModelWeight          float64       `yaml:"model_weight" mapstructure:"model_weight"`
	HeuristicWeight      float64       `yaml:"heuristic_weight" mapstructure:"heuristic_weight"`
	CorroborationPenalty float64       `yaml:"corroboration_penalty" mapstructure:"corroboration_penalty"`
	TranslateThreshold   float64       `yaml:"translate_threshold" mapstructure:"translate_threshold"` // Non-English ratio triggering translation
}

// LLMConfig configures the model oracle
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // "openai" or "" (disabled)
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SearchConfig configures the web-search fallback strategy
type SearchConfig struct {
	APIKey   string `yaml:"api_key" mapstructure:"api_key"` // Empty disables the strategy
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Count    int    `yaml:"count" mapstructure:"count"`
	Country  string `yaml:"country" mapstructure:"country"`
}

// StoreConfig configures persistence
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite database path
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "agiwatch/0.1 (+https://github.com/pkozlov/agiwatch)",
			MaxBodyBytes: 2_000_000,
		},
		Crawl: CrawlConfig{
			RequestInterval:   2 * time.Second,
			Burst:             1,
			RenderRetries:     3,
			NavigationTimeout: 45 * time.Second,
			MaxSitemapURLs:    10,
			MaxScanArticles:   15,
			RespectRobots:     true,
			CacheTTL:          15 * time.Minute,
		},
		Analysis: AnalysisConfig{
			BatchSize:            2,
			JobLimit:             50,
			StepTimeout:          45 * time.Second,
			BatchTimeout:         3 * time.Minute,
			HeuristicMax:         0.4,
			ModelWeight:          0.85,
			HeuristicWeight:      0.15,
			CorroborationPenalty: 0.15,
			TranslateThreshold:   0.5,
		},
		LLM: LLMConfig{
			Provider:  "",
			Model:     "",
			Timeout:   30,
			MaxTokens: 1000,
		},
		Search: SearchConfig{
			Endpoint: "https://api.search.brave.com/res/v1/web/search",
			Count:    5,
		},
		Store: StoreConfig{
			Path: "agiwatch.db",
		},
	}
}

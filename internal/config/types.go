package config

// DiagramMode selects how fenced diagram blocks are turned into images.
type DiagramMode string

const (
	// DiagramsClient leaves diagrams for mermaid.js in the browser.
	DiagramsClient DiagramMode = "client"
	// DiagramsKroki renders diagrams to SVG through a Kroki-compatible service.
	DiagramsKroki DiagramMode = "kroki"
	// DiagramsOff shows diagram sources as plain code blocks.
	DiagramsOff DiagramMode = "off"
)

// Config is the top-level notevault configuration, corresponding to .notevault.yml.
type Config struct {
	Owner           string         `yaml:"owner" koanf:"owner" json:"owner"`
	Repo            string         `yaml:"repo" koanf:"repo" json:"repo"`
	Branch          string         `yaml:"branch" koanf:"branch" json:"branch"`
	RootPath        string         `yaml:"root_path" koanf:"root_path" json:"root_path"`
	APIBaseURL      string         `yaml:"api_base_url" koanf:"api_base_url" json:"api_base_url"`
	RawBaseURL      string         `yaml:"raw_base_url" koanf:"raw_base_url" json:"raw_base_url"`
	Exclude         []string       `yaml:"exclude" koanf:"exclude" json:"exclude"`
	MaxConcurrency  int            `yaml:"max_concurrency" koanf:"max_concurrency" json:"max_concurrency"`
	Port            int            `yaml:"port" koanf:"port" json:"port"`
	DataDir         string         `yaml:"data_dir" koanf:"data_dir" json:"data_dir"`
	RecentNamespace string         `yaml:"recent_namespace" koanf:"recent_namespace" json:"recent_namespace"`
	RecentLimit     int            `yaml:"recent_limit" koanf:"recent_limit" json:"recent_limit"`
	SearchLimit     int            `yaml:"search_limit" koanf:"search_limit" json:"search_limit"`
	AllowAllOrigins bool           `yaml:"allow_all_origins" koanf:"allow_all_origins" json:"allow_all_origins"`
	Diagrams        DiagramsConfig `yaml:"diagrams" koanf:"diagrams" json:"diagrams"`
}

// DiagramsConfig holds diagram rendering settings.
type DiagramsConfig struct {
	Mode     DiagramMode `yaml:"mode" koanf:"mode" json:"mode"`
	KrokiURL string      `yaml:"kroki_url" koanf:"kroki_url" json:"kroki_url"`
}

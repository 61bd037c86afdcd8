package config

// DefaultExcludes are glob patterns skipped while walking the repository.
var DefaultExcludes = []string{
	".github/**",
	".obsidian/**",
	"node_modules/**",
}

// DefaultConfig returns a Config pointing at the public OpenNotes vault.
func DefaultConfig() *Config {
	return &Config{
		Owner:           "OpenNotesProject",
		Repo:            "Notes",
		Branch:          "main",
		RootPath:        "",
		APIBaseURL:      "https://api.github.com",
		RawBaseURL:      "https://raw.githubusercontent.com",
		Exclude:         DefaultExcludes,
		MaxConcurrency:  4,
		Port:            8080,
		DataDir:         ".notevault",
		RecentNamespace: "opennotes_recent",
		RecentLimit:     12,
		SearchLimit:     50,
		Diagrams: DiagramsConfig{
			Mode:     DiagramsClient,
			KrokiURL: "https://kroki.io",
		},
	}
}

package config

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to notevault! Point it at a GitHub repository of Markdown notes.")
	fmt.Println()

	defaults := DefaultConfig()

	owner, err := ask("Repository owner", defaults.Owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	repo, err := ask("Repository name", defaults.Repo)
	if err != nil {
		return nil, fmt.Errorf("repo: %w", err)
	}
	branch, err := ask("Branch", defaults.Branch)
	if err != nil {
		return nil, fmt.Errorf("branch: %w", err)
	}
	root, err := ask("Notes folder inside the repository (blank for the repository root)", "")
	if err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}

	modePrompt := promptui.Select{
		Label: "How should mermaid diagrams be rendered",
		Items: []string{
			"client - mermaid.js in the browser",
			"kroki  - SVG from a Kroki server",
			"off    - show diagram source",
		},
	}
	modeIdx, _, err := modePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("diagram mode: %w", err)
	}
	modes := []DiagramMode{DiagramsClient, DiagramsKroki, DiagramsOff}

	extra, err := ask("Extra exclude patterns (comma-separated, leave blank for defaults)", "")
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}

	cfg := defaults
	cfg.Owner = owner
	cfg.Repo = repo
	cfg.Branch = branch
	cfg.RootPath = strings.Trim(root, "/")
	cfg.Diagrams.Mode = modes[modeIdx]
	if patterns := splitAndTrim(extra); len(patterns) > 0 {
		cfg.Exclude = append(append([]string{}, DefaultExcludes...), patterns...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func ask(label, def string) (string, error) {
	p := promptui.Prompt{Label: label, Default: def}
	v, err := p.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}

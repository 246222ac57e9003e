package cmd

import (
	"testing"

	"github.com/ajurgis/repotally/config"
	"github.com/ajurgis/repotally/internal/output"
)

func TestGetOutputFormat(t *testing.T) {
	tests := []struct {
		input string
		want  output.OutputFormat
	}{
		{input: "console", want: output.FormatConsole},
		{input: "json", want: output.FormatJSON},
		{input: "csv", want: output.FormatCSV},
		{input: "markdown", want: output.FormatMarkdown},
		{input: "md", want: output.FormatMarkdown},
		{input: "unknown", want: output.FormatConsole},
		{input: "", want: output.FormatConsole},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := getOutputFormat(tt.input); got != tt.want {
				t.Fatalf("getOutputFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildAdapter(t *testing.T) {
	t.Run("GitCLI", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Backend = config.BackendGitCLI
		cfg.Repo = "/some/repo"

		adapter, path, err := buildAdapter(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if adapter == nil {
			t.Fatal("adapter = nil")
		}
		if path != "/some/repo" {
			t.Errorf("path = %q, expected /some/repo", path)
		}
	})

	t.Run("GitHub", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Backend = config.BackendGitHub
		cfg.GitHub.Owner = "octo"
		cfg.GitHub.Repo = "project"

		adapter, path, err := buildAdapter(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if adapter == nil {
			t.Fatal("adapter = nil")
		}
		if path != "octo/project" {
			t.Errorf("path = %q, expected octo/project", path)
		}
	})

	t.Run("GitLocalMissingRepo", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Repo = t.TempDir()

		if _, _, err := buildAdapter(cfg); err == nil {
			t.Fatal("expected error opening a directory without a repository")
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Backend = "svn"

		if _, _, err := buildAdapter(cfg); err == nil {
			t.Fatal("expected error for unknown backend")
		}
	})
}

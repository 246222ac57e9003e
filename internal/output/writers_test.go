package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ajurgis/repotally/internal/history"
	"github.com/ajurgis/repotally/internal/stats"
	"github.com/ajurgis/repotally/internal/vcs"
)

func sampleLogReport() *LogReport {
	alice := &history.Actor{ID: "alice@example.com", Name: "Alice"}
	bob := &history.Actor{ID: "bob@example.com", Name: "Bob"}
	base := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

	return &LogReport{
		RepoPath:    "/work/project",
		Range:       "v1.0..HEAD",
		GeneratedAt: base.Add(48 * time.Hour),
		Commits: []*history.Commit{
			{
				ID:         "c2c2c2c2c2c2c2c2",
				Parents:    []string{"c1c1c1c1c1c1c1c1"},
				Author:     bob,
				Committer:  bob,
				AuthoredAt: base.Add(time.Hour),
				Stats: &vcs.ChangeStats{
					Modified:  []string{"main.go"},
					Additions: 4,
					Deletions: 1,
				},
			},
			{
				ID:         "c1c1c1c1c1c1c1c1",
				Author:     alice,
				Committer:  alice,
				AuthoredAt: base,
			},
		},
	}
}

func TestJSONLogWriterToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	writer := &JSONLogWriter{}

	if err := writer.Write(sampleLogReport(), OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var decoded JSONLogReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding output: %v", err)
	}

	if decoded.Range != "v1.0..HEAD" {
		t.Errorf("range = %q, expected v1.0..HEAD", decoded.Range)
	}
	if decoded.TotalCommits != 2 {
		t.Errorf("totalCommits = %d, expected 2", decoded.TotalCommits)
	}
	if len(decoded.Commits) != 2 {
		t.Fatalf("commits length = %d, expected 2", len(decoded.Commits))
	}
	if decoded.Commits[0].Author.Name != "Bob" {
		t.Errorf("first commit author = %q, expected Bob", decoded.Commits[0].Author.Name)
	}
	if decoded.Commits[0].Stats == nil || decoded.Commits[0].Stats.Additions != 4 {
		t.Errorf("first commit stats = %+v, expected additions 4", decoded.Commits[0].Stats)
	}
	if decoded.Commits[1].Stats != nil {
		t.Errorf("second commit stats = %+v, expected nil", decoded.Commits[1].Stats)
	}
}

func TestJSONLogWriterTopKeepsTotal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	writer := &JSONLogWriter{}

	if err := writer.Write(sampleLogReport(), OutputOptions{Top: 1, OutputPath: path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var decoded JSONLogReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding output: %v", err)
	}

	if len(decoded.Commits) != 1 {
		t.Errorf("commits length = %d, expected 1", len(decoded.Commits))
	}
	if decoded.TotalCommits != 2 {
		t.Errorf("totalCommits = %d, expected 2", decoded.TotalCommits)
	}
}

func TestCSVAuthorsWriterToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authors.csv")
	writer := &CSVAuthorsWriter{}

	report := &AuthorsReport{
		RepoPath:    "/work/project",
		Range:       "master",
		GeneratedAt: time.Now(),
		Ranking:     "commits",
		Items: []history.AuthorRank{
			{Actor: &history.Actor{ID: "alice@example.com", Name: "Alice"}, Commits: 3, Additions: 10, Deletions: 2},
			{Actor: &history.Actor{ID: "bob@example.com", Name: "Bob"}, Commits: 1, Additions: 4, Deletions: 1},
		},
	}

	if err := writer.Write(report, OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, expected header plus 2", len(rows))
	}
	if rows[0][0] != "Rank" {
		t.Errorf("header[0] = %q, expected Rank", rows[0][0])
	}
	if rows[1][1] != "Alice" || rows[1][3] != "3" {
		t.Errorf("first row = %v, expected Alice with 3 commits", rows[1])
	}
	if rows[2][2] != "bob@example.com" {
		t.Errorf("second row identity = %q, expected bob@example.com", rows[2][2])
	}
}

func TestJSONStatsWriterToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	writer := &JSONStatsWriter{}

	base := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	report := &StatsReport{
		RepoPath:    "/work/project",
		Range:       "master",
		GeneratedAt: base,
		Stats: &stats.Report{
			Commits:   2,
			Additions: 14,
			Deletions: 3,
			Files: []*stats.FileActivity{
				{Path: "main.go", Added: 1, Modified: 1, FirstAddedAt: base, LastModifiedAt: base.Add(time.Hour)},
				{Path: "util.go", Added: 1, Deleted: 1, FirstAddedAt: base, DeletedAt: base.Add(2 * time.Hour)},
			},
			Authors: []stats.AuthorActivity{
				{
					Actor:         &history.Actor{ID: "alice@example.com", Name: "Alice"},
					Commits:       2,
					Additions:     14,
					Deletions:     3,
					FirstCommitAt: base,
					LastCommitAt:  base.Add(time.Hour),
				},
			},
		},
	}

	if err := writer.Write(report, OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var decoded JSONStatsReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding output: %v", err)
	}

	if decoded.Commits != 2 || decoded.Additions != 14 {
		t.Errorf("totals = %d commits / %d additions, expected 2 / 14", decoded.Commits, decoded.Additions)
	}
	if len(decoded.Files) != 2 {
		t.Fatalf("files length = %d, expected 2", len(decoded.Files))
	}
	if decoded.Files[0].LastModifiedAt == nil {
		t.Errorf("main.go lastModifiedAt = nil, expected a timestamp")
	}
	if decoded.Files[0].DeletedAt != nil {
		t.Errorf("main.go deletedAt = %v, expected nil", *decoded.Files[0].DeletedAt)
	}
	if decoded.Files[1].DeletedAt == nil {
		t.Errorf("util.go deletedAt = nil, expected a timestamp")
	}
	if len(decoded.Authors) != 1 || decoded.Authors[0].Share != 1 {
		t.Errorf("authors = %+v, expected one author with full share", decoded.Authors)
	}
}

func TestMarkdownLogWriterToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.md")
	writer := &MarkdownLogWriter{}

	if err := writer.Write(sampleLogReport(), OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	content := string(data)

	for _, want := range []string{"# Commit Log", "`v1.0..HEAD`", "`c2c2c2c2`", "Alice"} {
		if !strings.Contains(content, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONLogWriter writes commit log reports as JSON.
type JSONLogWriter struct{}

// JSONLogReport is the JSON output structure for a commit log.
type JSONLogReport struct {
	RepoPath     string          `json:"repo"`
	Range        string          `json:"range"`
	GeneratedAt  string          `json:"generatedAt"`
	TotalCommits int             `json:"totalCommits"`
	Commits      []JSONLogCommit `json:"commits"`
}

// JSONLogCommit is the JSON output structure for a single commit.
type JSONLogCommit struct {
	ID         string     `json:"id"`
	Parents    []string   `json:"parents,omitempty"`
	Author     JSONActor  `json:"author"`
	Committer  JSONActor  `json:"committer"`
	AuthoredAt string     `json:"authoredAt"`
	Stats      *JSONStats `json:"stats,omitempty"`
}

// JSONActor identifies a contributor in JSON output.
type JSONActor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JSONStats carries per-commit change statistics in JSON output.
type JSONStats struct {
	Added     []string `json:"added,omitempty"`
	Modified  []string `json:"modified,omitempty"`
	Deleted   []string `json:"deleted,omitempty"`
	Additions int      `json:"additions"`
	Deletions int      `json:"deletions"`
}

// Write outputs the commit log report as JSON.
func (w *JSONLogWriter) Write(report *LogReport, options OutputOptions) error {
	commits := limitTop(report.Commits, options.Top)

	jsonCommits := make([]JSONLogCommit, len(commits))
	for i, c := range commits {
		jc := JSONLogCommit{
			ID:         c.ID,
			Parents:    c.Parents,
			AuthoredAt: c.AuthoredAt.Format(time.RFC3339),
		}
		if c.Author != nil {
			jc.Author = JSONActor{ID: c.Author.ID, Name: c.Author.Name}
		}
		if c.Committer != nil {
			jc.Committer = JSONActor{ID: c.Committer.ID, Name: c.Committer.Name}
		}
		if c.Stats != nil {
			jc.Stats = &JSONStats{
				Added:     c.Stats.Added,
				Modified:  c.Stats.Modified,
				Deleted:   c.Stats.Deleted,
				Additions: c.Stats.Additions,
				Deletions: c.Stats.Deletions,
			}
		}
		jsonCommits[i] = jc
	}

	return writeJSON(JSONLogReport{
		RepoPath:     report.RepoPath,
		Range:        report.Range,
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		TotalCommits: len(report.Commits),
		Commits:      jsonCommits,
	}, options.OutputPath)
}

// JSONAuthorsWriter writes contributor rankings as JSON.
type JSONAuthorsWriter struct{}

// JSONAuthorsReport is the JSON output structure for a contributor ranking.
type JSONAuthorsReport struct {
	RepoPath     string           `json:"repo"`
	Range        string           `json:"range"`
	GeneratedAt  string           `json:"generatedAt"`
	Ranking      string           `json:"ranking"`
	TotalAuthors int              `json:"totalAuthors"`
	Items        []JSONAuthorRank `json:"items"`
}

// JSONAuthorRank is the JSON output structure for one ranked contributor.
type JSONAuthorRank struct {
	Actor     JSONActor `json:"actor"`
	Commits   int       `json:"commits"`
	Additions int       `json:"additions"`
	Deletions int       `json:"deletions"`
}

// Write outputs the contributor ranking as JSON.
func (w *JSONAuthorsWriter) Write(report *AuthorsReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	jsonItems := make([]JSONAuthorRank, len(items))
	for i, item := range items {
		jsonItems[i] = JSONAuthorRank{
			Actor:     JSONActor{ID: item.Actor.ID, Name: item.Actor.Name},
			Commits:   item.Commits,
			Additions: item.Additions,
			Deletions: item.Deletions,
		}
	}

	return writeJSON(JSONAuthorsReport{
		RepoPath:     report.RepoPath,
		Range:        report.Range,
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		Ranking:      report.Ranking,
		TotalAuthors: len(report.Items),
		Items:        jsonItems,
	}, options.OutputPath)
}

// JSONStatsWriter writes range statistics as JSON.
type JSONStatsWriter struct{}

// JSONStatsReport is the JSON output structure for range statistics.
type JSONStatsReport struct {
	RepoPath    string               `json:"repo"`
	Range       string               `json:"range"`
	GeneratedAt string               `json:"generatedAt"`
	Commits     int                  `json:"commits"`
	Additions   int                  `json:"additions"`
	Deletions   int                  `json:"deletions"`
	Files       []JSONFileActivity   `json:"files"`
	Authors     []JSONAuthorActivity `json:"authors"`
}

// JSONFileActivity is the JSON output structure for one file's activity.
type JSONFileActivity struct {
	Path           string  `json:"path"`
	Added          int     `json:"added"`
	Modified       int     `json:"modified"`
	Deleted        int     `json:"deleted"`
	FirstAddedAt   *string `json:"firstAddedAt,omitempty"`
	LastModifiedAt *string `json:"lastModifiedAt,omitempty"`
	DeletedAt      *string `json:"deletedAt,omitempty"`
}

// JSONAuthorActivity is the JSON output structure for one author's activity.
type JSONAuthorActivity struct {
	Actor         JSONActor `json:"actor"`
	Commits       int       `json:"commits"`
	Share         float64   `json:"share"`
	Additions     int       `json:"additions"`
	Deletions     int       `json:"deletions"`
	FirstCommitAt string    `json:"firstCommitAt"`
	LastCommitAt  string    `json:"lastCommitAt"`
}

// Write outputs the range statistics as JSON.
func (w *JSONStatsWriter) Write(report *StatsReport, options OutputOptions) error {
	s := report.Stats

	files := make([]JSONFileActivity, len(s.Files))
	for i, f := range s.Files {
		files[i] = JSONFileActivity{
			Path:           f.Path,
			Added:          f.Added,
			Modified:       f.Modified,
			Deleted:        f.Deleted,
			FirstAddedAt:   formatOptionalTime(f.FirstAddedAt),
			LastModifiedAt: formatOptionalTime(f.LastModifiedAt),
			DeletedAt:      formatOptionalTime(f.DeletedAt),
		}
	}

	authors := make([]JSONAuthorActivity, len(s.Authors))
	for i, a := range s.Authors {
		authors[i] = JSONAuthorActivity{
			Actor:         JSONActor{ID: a.Actor.ID, Name: a.Actor.Name},
			Commits:       a.Commits,
			Share:         s.Share(a),
			Additions:     a.Additions,
			Deletions:     a.Deletions,
			FirstCommitAt: a.FirstCommitAt.Format(time.RFC3339),
			LastCommitAt:  a.LastCommitAt.Format(time.RFC3339),
		}
	}

	return writeJSON(JSONStatsReport{
		RepoPath:    report.RepoPath,
		Range:       report.Range,
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Commits:     s.Commits,
		Additions:   s.Additions,
		Deletions:   s.Deletions,
		Files:       files,
		Authors:     authors,
	}, options.OutputPath)
}

func formatOptionalTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

func writeJSON(data interface{}, outputPath string) error {
	encoder := json.NewEncoder(os.Stdout)
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		encoder = json.NewEncoder(file)
	}

	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

package output

import (
	"fmt"
)

// MarkdownLogWriter writes commit log reports as Markdown.
type MarkdownLogWriter struct{}

// Write outputs the commit log report as Markdown.
func (w *MarkdownLogWriter) Write(report *LogReport, options OutputOptions) error {
	commits := limitTop(report.Commits, options.Top)

	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, "# Commit Log")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	fmt.Fprintf(out, "**Range:** `%s`\n\n", report.Range)
	fmt.Fprintf(out, "**Total Commits:** %d\n\n", len(report.Commits))

	fmt.Fprintln(out, "| # | Commit | Author | Date | + | - |")
	fmt.Fprintln(out, "|---|--------|--------|------|---|---|")
	for i, c := range commits {
		additions, deletions := "-", "-"
		if c.Stats != nil {
			additions = fmt.Sprintf("%d", c.Stats.Additions)
			deletions = fmt.Sprintf("%d", c.Stats.Deletions)
		}
		fmt.Fprintf(out, "| %d | `%s` | %s | %s | %s | %s |\n",
			i+1, shortID(c.ID), actorName(c.Author),
			c.AuthoredAt.Format(reportDateTimeLayout), additions, deletions)
	}

	return nil
}

// MarkdownAuthorsWriter writes contributor rankings as Markdown.
type MarkdownAuthorsWriter struct{}

// Write outputs the contributor ranking as Markdown.
func (w *MarkdownAuthorsWriter) Write(report *AuthorsReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, "# Contributor Ranking")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	fmt.Fprintf(out, "**Range:** `%s`\n\n", report.Range)
	fmt.Fprintf(out, "**Ranked By:** %s\n\n", report.Ranking)

	fmt.Fprintln(out, "| # | Author | Identity | Commits | + | - |")
	fmt.Fprintln(out, "|---|--------|----------|---------|---|---|")
	for i, item := range items {
		fmt.Fprintf(out, "| %d | %s | %s | %d | %d | %d |\n",
			i+1, item.Actor.Name, item.Actor.ID, item.Commits, item.Additions, item.Deletions)
	}

	return nil
}

// MarkdownStatsWriter writes range statistics as Markdown.
type MarkdownStatsWriter struct{}

// Write outputs the range statistics as Markdown.
func (w *MarkdownStatsWriter) Write(report *StatsReport, options OutputOptions) error {
	s := report.Stats

	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, "# Range Statistics")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	fmt.Fprintf(out, "**Range:** `%s`\n\n", report.Range)
	fmt.Fprintf(out, "**Commits:** %d, **Added:** %d, **Deleted:** %d\n\n", s.Commits, s.Additions, s.Deletions)

	fmt.Fprintln(out, "## Contributors")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| # | Author | Commits | Share | First | Last |")
	fmt.Fprintln(out, "|---|--------|---------|-------|-------|------|")
	for i, a := range limitTop(s.Authors, options.Top) {
		fmt.Fprintf(out, "| %d | %s | %d | %.1f%% | %s | %s |\n",
			i+1, a.Actor.Name, a.Commits, s.Share(a)*100,
			a.FirstCommitAt.Format(reportDateLayout), a.LastCommitAt.Format(reportDateLayout))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "## Files")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| # | Path | Added | Modified | Deleted | Last change |")
	fmt.Fprintln(out, "|---|------|-------|----------|---------|-------------|")
	for i, f := range limitTop(s.Files, options.Top) {
		last := ""
		if !f.LastModifiedAt.IsZero() {
			last = f.LastModifiedAt.Format(reportDateLayout)
		}
		fmt.Fprintf(out, "| %d | `%s` | %d | %d | %d | %s |\n",
			i+1, f.Path, f.Added, f.Modified, f.Deleted, last)
	}

	return nil
}

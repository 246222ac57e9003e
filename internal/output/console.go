package output

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
)

// ConsoleLogWriter writes commit log reports to the console.
type ConsoleLogWriter struct{}

// Write outputs the commit log report to the console.
func (w *ConsoleLogWriter) Write(report *LogReport, options OutputOptions) error {
	commits := limitTop(report.Commits, options.Top)

	color.Green("Commit Log")
	fmt.Printf("Repository: %s\n", report.RepoPath)
	fmt.Printf("Range: %s\n", report.Range)
	fmt.Printf("Total commits: %d\n\n", len(report.Commits))

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCommit\tAuthor\tDate\t+\t-")
	for i, c := range commits {
		additions, deletions := "-", "-"
		if c.Stats != nil {
			additions = fmt.Sprintf("%d", c.Stats.Additions)
			deletions = fmt.Sprintf("%d", c.Stats.Deletions)
		}
		author := ""
		if c.Author != nil {
			author = c.Author.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			shortID(c.ID),
			author,
			c.AuthoredAt.Format(reportDateTimeLayout),
			additions,
			deletions,
		)
	}
	tw.Flush()

	return nil
}

// ConsoleAuthorsWriter writes contributor rankings to the console.
type ConsoleAuthorsWriter struct{}

// Write outputs the contributor ranking to the console.
func (w *ConsoleAuthorsWriter) Write(report *AuthorsReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	color.Green("Contributor Ranking")
	fmt.Printf("Repository: %s\n", report.RepoPath)
	fmt.Printf("Range: %s\n", report.Range)
	fmt.Printf("Ranked by: %s\n", report.Ranking)
	fmt.Printf("Total contributors: %d\n\n", len(report.Items))

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tAuthor\tIdentity\tCommits\t+\t-")
	for i, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\n",
			i+1,
			item.Actor.Name,
			item.Actor.ID,
			item.Commits,
			item.Additions,
			item.Deletions,
		)
	}
	tw.Flush()

	return nil
}

// ConsoleStatsWriter writes range statistics to the console.
type ConsoleStatsWriter struct{}

// Write outputs the range statistics to the console.
func (w *ConsoleStatsWriter) Write(report *StatsReport, options OutputOptions) error {
	s := report.Stats

	color.Green("Range Statistics")
	fmt.Printf("Repository: %s\n", report.RepoPath)
	fmt.Printf("Range: %s\n", report.Range)
	fmt.Printf("Commits: %d, lines added: %d, lines deleted: %d\n\n", s.Commits, s.Additions, s.Deletions)

	fmt.Println("Contributors:")
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tAuthor\tCommits\tShare\tFirst\tLast")
	for i, a := range limitTop(s.Authors, options.Top) {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.1f%%\t%s\t%s\n",
			i+1,
			a.Actor.Name,
			a.Commits,
			s.Share(a)*100,
			a.FirstCommitAt.Format(reportDateLayout),
			a.LastCommitAt.Format(reportDateLayout),
		)
	}
	tw.Flush()

	fmt.Println("\nFiles:")
	tw = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPath\tAdded\tModified\tDeleted\tLast change")
	for i, f := range limitTop(s.Files, options.Top) {
		last := ""
		if !f.LastModifiedAt.IsZero() {
			last = f.LastModifiedAt.Format(reportDateLayout)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\n",
			i+1, f.Path, f.Added, f.Modified, f.Deleted, last)
	}
	tw.Flush()

	return nil
}

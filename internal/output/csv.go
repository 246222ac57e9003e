package output

import (
	"encoding/csv"
	"fmt"
	"os"
)

// CSVLogWriter writes commit log reports as CSV.
type CSVLogWriter struct{}

// Write outputs the commit log report as CSV.
func (w *CSVLogWriter) Write(report *LogReport, options OutputOptions) error {
	commits := limitTop(report.Commits, options.Top)

	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	headers := []string{"ID", "Author", "AuthorID", "Committer", "CommitterID", "AuthoredAt", "Additions", "Deletions"}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, c := range commits {
		additions, deletions := "", ""
		if c.Stats != nil {
			additions = fmt.Sprintf("%d", c.Stats.Additions)
			deletions = fmt.Sprintf("%d", c.Stats.Deletions)
		}
		row := []string{
			c.ID,
			actorName(c.Author), actorID(c.Author),
			actorName(c.Committer), actorID(c.Committer),
			c.AuthoredAt.Format(reportDateTimeLayout),
			additions,
			deletions,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVAuthorsWriter writes contributor rankings as CSV.
type CSVAuthorsWriter struct{}

// Write outputs the contributor ranking as CSV.
func (w *CSVAuthorsWriter) Write(report *AuthorsReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	if err := writer.Write([]string{"Rank", "Author", "Identity", "Commits", "Additions", "Deletions"}); err != nil {
		return err
	}
	for i, item := range items {
		row := []string{
			fmt.Sprintf("%d", i+1),
			item.Actor.Name,
			item.Actor.ID,
			fmt.Sprintf("%d", item.Commits),
			fmt.Sprintf("%d", item.Additions),
			fmt.Sprintf("%d", item.Deletions),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVStatsWriter writes range statistics as CSV, one row per file.
type CSVStatsWriter struct{}

// Write outputs the range statistics as CSV.
func (w *CSVStatsWriter) Write(report *StatsReport, options OutputOptions) error {
	files := limitTop(report.Stats.Files, options.Top)

	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	if err := writer.Write([]string{"Path", "Added", "Modified", "Deleted", "FirstAddedAt", "LastModifiedAt", "DeletedAt"}); err != nil {
		return err
	}
	for _, f := range files {
		row := []string{
			f.Path,
			fmt.Sprintf("%d", f.Added),
			fmt.Sprintf("%d", f.Modified),
			fmt.Sprintf("%d", f.Deleted),
			formatCSVTime(f.FirstAddedAt),
			formatCSVTime(f.LastModifiedAt),
			formatCSVTime(f.DeletedAt),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func createCSVWriter(outputPath string) (*csv.Writer, *os.File, error) {
	out, file, err := openOutputWriter(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return csv.NewWriter(out), file, nil
}

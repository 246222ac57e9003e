package output

import (
	"time"

	"github.com/ajurgis/repotally/internal/history"
	"github.com/ajurgis/repotally/internal/stats"
)

// Compile-time interface conformance checks.
// These ensure that all writer types correctly implement their respective interfaces.
var (
	// LogReportWriter implementations
	_ LogReportWriter = (*ConsoleLogWriter)(nil)
	_ LogReportWriter = (*JSONLogWriter)(nil)
	_ LogReportWriter = (*CSVLogWriter)(nil)
	_ LogReportWriter = (*MarkdownLogWriter)(nil)

	// AuthorsReportWriter implementations
	_ AuthorsReportWriter = (*ConsoleAuthorsWriter)(nil)
	_ AuthorsReportWriter = (*JSONAuthorsWriter)(nil)
	_ AuthorsReportWriter = (*CSVAuthorsWriter)(nil)
	_ AuthorsReportWriter = (*MarkdownAuthorsWriter)(nil)

	// StatsReportWriter implementations
	_ StatsReportWriter = (*ConsoleStatsWriter)(nil)
	_ StatsReportWriter = (*JSONStatsWriter)(nil)
	_ StatsReportWriter = (*CSVStatsWriter)(nil)
	_ StatsReportWriter = (*MarkdownStatsWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
)

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	Top        int
	OutputPath string
}

// LogReport holds a resolved commit range for rendering.
type LogReport struct {
	RepoPath    string
	Range       string
	GeneratedAt time.Time
	Commits     []*history.Commit
}

// AuthorsReport holds a contributor ranking for rendering.
type AuthorsReport struct {
	RepoPath    string
	Range       string
	GeneratedAt time.Time
	Ranking     string // "commits" or "modifications"
	Items       []history.AuthorRank
}

// StatsReport holds aggregated range statistics for rendering.
type StatsReport struct {
	RepoPath    string
	Range       string
	GeneratedAt time.Time
	Stats       *stats.Report
}

// LogReportWriter writes commit log reports.
type LogReportWriter interface {
	Write(report *LogReport, options OutputOptions) error
}

// AuthorsReportWriter writes contributor ranking reports.
type AuthorsReportWriter interface {
	Write(report *AuthorsReport, options OutputOptions) error
}

// StatsReportWriter writes range statistics reports.
type StatsReportWriter interface {
	Write(report *StatsReport, options OutputOptions) error
}

// NewLogReportWriter creates a log report writer for the specified format.
func NewLogReportWriter(format OutputFormat) LogReportWriter {
	switch format {
	case FormatJSON:
		return &JSONLogWriter{}
	case FormatCSV:
		return &CSVLogWriter{}
	case FormatMarkdown:
		return &MarkdownLogWriter{}
	default:
		return &ConsoleLogWriter{}
	}
}

// NewAuthorsReportWriter creates an authors report writer for the specified format.
func NewAuthorsReportWriter(format OutputFormat) AuthorsReportWriter {
	switch format {
	case FormatJSON:
		return &JSONAuthorsWriter{}
	case FormatCSV:
		return &CSVAuthorsWriter{}
	case FormatMarkdown:
		return &MarkdownAuthorsWriter{}
	default:
		return &ConsoleAuthorsWriter{}
	}
}

// NewStatsReportWriter creates a stats report writer for the specified format.
func NewStatsReportWriter(format OutputFormat) StatsReportWriter {
	switch format {
	case FormatJSON:
		return &JSONStatsWriter{}
	case FormatCSV:
		return &CSVStatsWriter{}
	case FormatMarkdown:
		return &MarkdownStatsWriter{}
	default:
		return &ConsoleStatsWriter{}
	}
}

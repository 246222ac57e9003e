// Package gitcli implements the VCS adapter by shelling out to the git
// binary. It exists for repositories where go-git is slow or unsupported;
// output is parsed from NUL-separated pretty-format records, never from
// porcelain text.
package gitcli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ajurgis/repotally/internal/vcs"
)

// Adapter reads commit history by invoking git against a local repository.
type Adapter struct {
	path   string
	detail bool
	gitBin string
}

// New creates an adapter for the repository at path. When detail is set,
// fetches also gather per-commit file and line statistics via --raw and
// --numstat.
func New(path string, detail bool) *Adapter {
	return &Adapter{path: path, detail: detail, gitBin: "git"}
}

// Each commit header is prefixed by 0x1e (record separator) and carries
// NUL-separated fields, so the combined --raw/-z and --numstat/-z output
// splits reliably into records.
const prettyFormat = "%x1e%H%x00%P%x00%aI%x00%an%x00%ae%x00%cn%x00%ce%n"

// ResolveRef resolves a revision expression to a commit id.
func (a *Adapter) ResolveRef(ctx context.Context, name string) (string, error) {
	out, err := a.git(ctx, "rev-parse", "--verify", "--quiet", name+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", name, vcs.ErrUnknownReference)
	}
	return strings.TrimSpace(string(out)), nil
}

// FetchRange returns the commits in r newest first. The boundary record is
// returned when the exclusive start is an ancestor of the end; a start that
// does not resolve is treated as history ending at the root.
func (a *Adapter) FetchRange(ctx context.Context, r vcs.Range) (*vcs.RawCommit, []vcs.RawCommit, error) {
	revspec := r.End
	withBoundary := false
	if !r.FromRoot() {
		switch a.startDisposition(ctx, r) {
		case startIsAncestor:
			revspec = r.Start + ".." + r.End
			withBoundary = true
		case startKnown:
			revspec = r.Start + ".." + r.End
		case startUnknown:
			// Deleted or foreign boundary: fetch to the root.
		}
	}

	raws, err := a.logCommits(ctx, "--pretty=format:"+prettyFormat, revspec)
	if err != nil {
		return nil, nil, err
	}

	var boundary *vcs.RawCommit
	if withBoundary {
		boundaryRaws, err := a.logCommits(ctx, "--pretty=format:"+prettyFormat, "-1", r.Start)
		if err != nil {
			return nil, nil, err
		}
		if len(boundaryRaws) != 1 {
			return nil, nil, fmt.Errorf("boundary %s: expected one record, got %d", r.Start, len(boundaryRaws))
		}
		boundary = &boundaryRaws[0]
	}
	return boundary, raws, nil
}

// SupportsLineStats reports whether fetches gather file and line statistics.
func (a *Adapter) SupportsLineStats() bool {
	return a.detail
}

type disposition int

const (
	startUnknown disposition = iota
	startKnown
	startIsAncestor
)

func (a *Adapter) startDisposition(ctx context.Context, r vcs.Range) disposition {
	if _, err := a.git(ctx, "rev-parse", "--verify", "--quiet", r.Start+"^{commit}"); err != nil {
		return startUnknown
	}
	if _, err := a.git(ctx, "merge-base", "--is-ancestor", r.Start, r.End); err != nil {
		return startKnown
	}
	return startIsAncestor
}

func (a *Adapter) logCommits(ctx context.Context, logArgs ...string) ([]vcs.RawCommit, error) {
	args := []string{"log", "--no-color"}
	args = append(args, logArgs...)
	if a.detail {
		args = append(args, "--raw", "-z", "--numstat", "-z")
	}

	out, err := a.git(ctx, args...)
	if err != nil {
		return nil, err
	}
	return a.parseLog(out)
}

func (a *Adapter) git(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"-C", a.path}, args...)
	out, err := exec.CommandContext(ctx, a.gitBin, full...).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

func (a *Adapter) parseLog(out []byte) ([]vcs.RawCommit, error) {
	records := bytes.Split(out, []byte{0x1e})
	raws := make([]vcs.RawCommit, 0, len(records))

	for _, rec := range records {
		if len(rec) == 0 {
			continue
		}
		header, body := splitHeaderBody(rec)
		if len(header) == 0 {
			continue
		}

		fields := bytes.SplitN(header, []byte{0x00}, 7)
		if len(fields) < 7 {
			return nil, fmt.Errorf("unexpected git log header format")
		}

		authoredAt, err := time.Parse(time.RFC3339, string(fields[2]))
		if err != nil {
			return nil, fmt.Errorf("parse author date: %w", err)
		}

		raw := vcs.RawCommit{
			ID:            string(fields[0]),
			ParentIDs:     strings.Fields(string(fields[1])),
			AuthoredAt:    authoredAt,
			AuthorName:    string(fields[3]),
			AuthorID:      strings.ToLower(string(fields[4])),
			CommitterName: string(fields[5]),
			CommitterID:   strings.ToLower(string(fields[6])),
		}

		if a.detail {
			stats, err := parseChangeStats(body)
			if err != nil {
				return nil, fmt.Errorf("commit %s: %w", raw.ID, err)
			}
			raw.Stats = stats
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

func splitHeaderBody(rec []byte) (header, body []byte) {
	// The pretty line ends with '\n', then the diff output follows.
	if idx := bytes.IndexByte(rec, '\n'); idx != -1 {
		return rec[:idx], rec[idx+1:]
	}
	return rec, nil
}

type rawEntry struct {
	status string // "M", "A", "D", "R100", ...
	path   string // destination path
}

// parseChangeStats reads the --raw entries and matching --numstat entries of
// one commit body and folds them into ChangeStats.
func parseChangeStats(body []byte) (*vcs.ChangeStats, error) {
	entries, pos, err := parseRawEntries(body)
	if err != nil {
		return nil, err
	}

	stats := &vcs.ChangeStats{}
	for _, e := range entries {
		switch e.status[0] {
		case 'A':
			stats.Added = append(stats.Added, e.path)
		case 'D':
			stats.Deleted = append(stats.Deleted, e.path)
		default:
			// Renames and copies count as modifications of the new path.
			stats.Modified = append(stats.Modified, e.path)
		}
	}

	if err := parseNumstat(body[pos:], entries, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func parseRawEntries(body []byte) ([]rawEntry, int, error) {
	i := 0
	for i < len(body) && (body[i] == '\n' || body[i] == '\r') {
		i++
	}

	var entries []rawEntry
	for i < len(body) && body[i] == ':' {
		meta, ok := readUntilNUL(body, &i)
		if !ok {
			return nil, 0, fmt.Errorf("unexpected git --raw format (missing NUL)")
		}
		fields := strings.Fields(string(meta))
		if len(fields) < 5 {
			return nil, 0, fmt.Errorf("unexpected git --raw meta: %q", string(meta))
		}
		status := fields[len(fields)-1]

		path, ok := readStringUntilNUL(body, &i)
		if !ok {
			return nil, 0, fmt.Errorf("unexpected git --raw format (missing path)")
		}
		if status[0] == 'R' || status[0] == 'C' {
			// Renames and copies carry source then destination.
			path, ok = readStringUntilNUL(body, &i)
			if !ok {
				return nil, 0, fmt.Errorf("unexpected git --raw format (missing rename path)")
			}
		}
		entries = append(entries, rawEntry{status: status, path: path})
	}
	return entries, i, nil
}

func parseNumstat(body []byte, entries []rawEntry, stats *vcs.ChangeStats) error {
	i := 0
	for _, e := range entries {
		added, ok, err := readNumstatInt(body, &i)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("unexpected git --numstat format (added)")
		}
		deleted, ok, err := readNumstatInt(body, &i)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("unexpected git --numstat format (deleted)")
		}

		// Paths are consumed and discarded; --raw is the source of truth.
		if _, ok := readStringUntilNUL(body, &i); !ok {
			return fmt.Errorf("unexpected git --numstat format (path)")
		}
		if e.status[0] == 'R' || e.status[0] == 'C' {
			if _, ok := readStringUntilNUL(body, &i); !ok {
				return fmt.Errorf("unexpected git --numstat format (rename path)")
			}
		}

		stats.Additions += added
		stats.Deletions += deleted
	}
	return nil
}

func readUntilNUL(b []byte, i *int) ([]byte, bool) {
	if *i >= len(b) {
		return nil, false
	}
	j := bytes.IndexByte(b[*i:], 0)
	if j == -1 {
		return nil, false
	}
	start := *i
	*i = start + j + 1
	return b[start : start+j], true
}

func readStringUntilNUL(b []byte, i *int) (string, bool) {
	raw, ok := readUntilNUL(b, i)
	if !ok {
		return "", false
	}
	return string(raw), true
}

// readNumstatInt reads one tab-delimited numstat count. Binary files print
// "-" and count as zero.
func readNumstatInt(b []byte, i *int) (int, bool, error) {
	if *i >= len(b) {
		return 0, false, nil
	}
	j := bytes.IndexByte(b[*i:], '\t')
	if j == -1 {
		return 0, false, nil
	}
	field := b[*i : *i+j]
	*i = *i + j + 1

	if len(field) == 1 && field[0] == '-' {
		return 0, true, nil
	}
	n, err := strconv.Atoi(string(field))
	if err != nil {
		return 0, true, fmt.Errorf("parse numstat int %q: %w", string(field), err)
	}
	return n, true, nil
}

// Compile-time interface conformance check.
var _ vcs.Adapter = (*Adapter)(nil)

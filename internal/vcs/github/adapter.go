// Package github implements the VCS adapter over the GitHub REST commits
// API. Pagination, client-side rate limiting, and retry with backoff all live
// here, behind the adapter interface; the history core never sees them.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ajurgis/repotally/internal/vcs"
)

// Options configures a GitHub adapter.
type Options struct {
	Owner string
	Repo  string

	// Token is sent as a bearer token when set. Unauthenticated requests
	// work but hit much lower rate limits.
	Token string

	// BaseURL overrides the API endpoint, for GitHub Enterprise and tests.
	// Defaults to https://api.github.com.
	BaseURL string

	// DetailStats enables one extra detail request per commit to obtain
	// file and line statistics.
	DetailStats bool

	// RequestsPerSecond caps the client-side request rate. Defaults to 5.
	RequestsPerSecond float64

	// MaxRetries bounds retry attempts on rate-limit and server errors.
	// Defaults to 3.
	MaxRetries int

	// PageSize is the commits-per-page for list calls. Defaults to 100,
	// the API maximum.
	PageSize int

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Adapter fetches commit history from a GitHub repository.
type Adapter struct {
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// New creates a GitHub adapter for opts.Owner/opts.Repo.
func New(opts Options) *Adapter {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.github.com"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.PageSize <= 0 || opts.PageSize > 100 {
		opts.PageSize = 100
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		opts:    opts,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		log:     logger,
	}
}

type commitRecord struct {
	SHA     string `json:"sha"`
	Parents []struct {
		SHA string `json:"sha"`
	} `json:"parents"`
	Commit struct {
		Author struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
		Committer struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"committer"`
	} `json:"commit"`
	Stats *struct {
		Additions int `json:"additions"`
		Deletions int `json:"deletions"`
	} `json:"stats"`
	Files []struct {
		Filename  string `json:"filename"`
		Status    string `json:"status"`
		Additions int    `json:"additions"`
		Deletions int    `json:"deletions"`
	} `json:"files"`
}

// ResolveRef resolves a branch, tag, or commit expression to a full sha.
func (a *Adapter) ResolveRef(ctx context.Context, name string) (string, error) {
	var rec commitRecord
	status, err := a.getJSON(ctx, a.commitURL(url.PathEscape(name)), &rec)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound || status == http.StatusUnprocessableEntity {
		return "", fmt.Errorf("resolving %q: %w", name, vcs.ErrUnknownReference)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("resolving %q: unexpected status %d", name, status)
	}
	return rec.SHA, nil
}

// FetchRange pages through the commit list starting at r.End until it meets
// the exclusive start, which becomes the boundary record. A not-found reply
// partway through pagination means history was rewritten or truncated; the
// commits gathered so far are returned with no boundary, never an error.
func (a *Adapter) FetchRange(ctx context.Context, r vcs.Range) (*vcs.RawCommit, []vcs.RawCommit, error) {
	var raws []vcs.RawCommit
	for page := 1; ; page++ {
		listURL := fmt.Sprintf("%s/repos/%s/%s/commits?sha=%s&per_page=%d&page=%d",
			a.opts.BaseURL, a.opts.Owner, a.opts.Repo, url.QueryEscape(r.End), a.opts.PageSize, page)

		var records []commitRecord
		status, err := a.getJSON(ctx, listURL, &records)
		if err != nil {
			return nil, nil, err
		}
		if status == http.StatusNotFound || status == http.StatusUnprocessableEntity {
			a.log.Debug("history ended mid-fetch", "range", r.String(), "page", page)
			return nil, raws, nil
		}
		if status != http.StatusOK {
			return nil, nil, fmt.Errorf("listing commits for %s: unexpected status %d", r.String(), status)
		}

		for i := range records {
			rec := &records[i]
			if !r.FromRoot() && rec.SHA == r.Start {
				boundary, err := a.rawCommit(ctx, rec)
				if err != nil {
					return nil, nil, err
				}
				return &boundary, raws, nil
			}
			raw, err := a.rawCommit(ctx, rec)
			if err != nil {
				return nil, nil, err
			}
			raws = append(raws, raw)
		}

		if len(records) < a.opts.PageSize {
			// Short page: the listing reached the root of history.
			return nil, raws, nil
		}
	}
}

// SupportsLineStats reports whether per-commit detail requests are enabled.
func (a *Adapter) SupportsLineStats() bool {
	return a.opts.DetailStats
}

func (a *Adapter) rawCommit(ctx context.Context, rec *commitRecord) (vcs.RawCommit, error) {
	raw := vcs.RawCommit{
		ID:            rec.SHA,
		AuthorID:      strings.ToLower(rec.Commit.Author.Email),
		AuthorName:    rec.Commit.Author.Name,
		CommitterID:   strings.ToLower(rec.Commit.Committer.Email),
		CommitterName: rec.Commit.Committer.Name,
		AuthoredAt:    rec.Commit.Author.Date,
	}
	for _, p := range rec.Parents {
		raw.ParentIDs = append(raw.ParentIDs, p.SHA)
	}

	if a.opts.DetailStats {
		stats, err := a.fetchStats(ctx, rec.SHA)
		if err != nil {
			return vcs.RawCommit{}, err
		}
		raw.Stats = stats
	}
	return raw, nil
}

// fetchStats issues the per-commit detail request carrying files and line
// counts, which the list endpoint omits.
func (a *Adapter) fetchStats(ctx context.Context, sha string) (*vcs.ChangeStats, error) {
	var rec commitRecord
	status, err := a.getJSON(ctx, a.commitURL(sha), &rec)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("commit detail %s: unexpected status %d", sha, status)
	}

	stats := &vcs.ChangeStats{}
	if rec.Stats != nil {
		stats.Additions = rec.Stats.Additions
		stats.Deletions = rec.Stats.Deletions
	}
	for _, f := range rec.Files {
		switch f.Status {
		case "added":
			stats.Added = append(stats.Added, f.Filename)
		case "removed":
			stats.Deleted = append(stats.Deleted, f.Filename)
		default:
			stats.Modified = append(stats.Modified, f.Filename)
		}
	}
	return stats, nil
}

func (a *Adapter) commitURL(ref string) string {
	return fmt.Sprintf("%s/repos/%s/%s/commits/%s", a.opts.BaseURL, a.opts.Owner, a.opts.Repo, ref)
}

// getJSON performs one rate-limited GET with bounded retry on rate-limit and
// server errors. Not-found statuses are returned to the caller undecoded so
// each endpoint can decide what absence means.
func (a *Adapter) getJSON(ctx context.Context, rawURL string, out any) (int, error) {
	var lastStatus int
	for attempt := 0; attempt <= a.opts.MaxRetries; attempt++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return 0, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return 0, err
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		if a.opts.Token != "" {
			req.Header.Set("Authorization", "Bearer "+a.opts.Token)
		}

		resp, err := a.client.Do(req)
		if err != nil {
			return 0, fmt.Errorf("requesting %s: %w", rawURL, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", rawURL, err)
		}

		lastStatus = resp.StatusCode
		if retryable(resp) {
			delay := retryDelay(resp, attempt)
			a.log.Debug("retrying request", "url", rawURL, "status", resp.StatusCode, "delay", delay)
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}

		if resp.StatusCode == http.StatusOK {
			if err := json.Unmarshal(body, out); err != nil {
				return 0, fmt.Errorf("decoding %s: %w", rawURL, err)
			}
		}
		return resp.StatusCode, nil
	}
	return 0, fmt.Errorf("requesting %s: giving up after %d retries (last status %d)",
		rawURL, a.opts.MaxRetries, lastStatus)
}

// retryable reports whether a response indicates a transient condition: a
// server error, 429, or a 403 with the primary rate limit exhausted.
func retryable(resp *http.Response) bool {
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-Ratelimit-Remaining") == "0"
}

func retryDelay(resp *http.Response, attempt int) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if v := resp.Header.Get("X-Ratelimit-Reset"); v != "" {
		if reset, err := strconv.ParseInt(v, 10, 64); err == nil {
			if until := time.Until(time.Unix(reset, 0)); until > 0 {
				return until
			}
		}
	}
	return time.Duration(1<<attempt) * time.Second
}

// Compile-time interface conformance check.
var _ vcs.Adapter = (*Adapter)(nil)

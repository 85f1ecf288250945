// Package upstream acquires and caches snapshots of the upstream asset
// repository. A snapshot is an extracted archive of one commit, cached
// under the project workspace and reused within a freshness window so
// the tool stays usable offline.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/astrosteveo/copilot-tui/internal/transport"
	"github.com/astrosteveo/copilot-tui/pkg/constants"
	"github.com/astrosteveo/copilot-tui/pkg/errors"
	"github.com/astrosteveo/copilot-tui/pkg/logging"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
)

// Syncer acquires snapshots for one project.
type Syncer struct {
	project    *paths.Project
	client     *transport.Client
	apiBase    string
	archiveURL string
	now        func() utc.Time
	freshness  time.Duration
	retention  int
	logger     *zerolog.Logger
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithClient overrides the HTTP client.
func WithClient(client *transport.Client) Option {
	return func(s *Syncer) { s.client = client }
}

// WithAPIBase overrides the API base URL.
func WithAPIBase(base string) Option {
	return func(s *Syncer) { s.apiBase = base }
}

// WithArchiveURL overrides the archive download URL.
func WithArchiveURL(url string) Option {
	return func(s *Syncer) { s.archiveURL = url }
}

// WithClock overrides the clock.
func WithClock(now func() utc.Time) Option {
	return func(s *Syncer) { s.now = now }
}

// WithFreshness overrides the cache freshness window.
func WithFreshness(d time.Duration) Option {
	return func(s *Syncer) { s.freshness = d }
}

// WithRetention overrides how many cached snapshots pruning keeps.
func WithRetention(n int) Option {
	return func(s *Syncer) { s.retention = n }
}

// WithLogger overrides the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Syncer) { s.logger = logger }
}

// NewSyncer creates a syncer for the given project.
func NewSyncer(project *paths.Project, opts ...Option) *Syncer {
	s := &Syncer{
		project: project,
		client:  transport.NewFromEnv(),
		apiBase: "https://api.github.com",
		archiveURL: fmt.Sprintf("https://codeload.github.com/%s/%s/zip/refs/heads/%s",
			constants.UpstreamOwner, constants.UpstreamRepo, constants.UpstreamRef),
		now:       utc.Now,
		freshness: constants.SnapshotFreshness,
		retention: constants.SnapshotRetention,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Acquire returns a usable snapshot. Without force, a cached snapshot
// inside the freshness window is returned with no network traffic.
// Otherwise the upstream head is resolved and a matching cached snapshot
// is revalidated, or a fresh archive is downloaded. Network failure falls
// back to the newest cached snapshot with an OfflineWarning; with no
// cache at all it is a startup failure.
func (s *Syncer) Acquire(ctx context.Context, force bool) (*Snapshot, []error, error) {
	cached := listCached(s.project)
	now := s.now()

	if !force && len(cached) > 0 {
		newest := cached[0]
		if now.Sub(newest.FetchedAt) < s.freshness {
			s.logger.Debug().Str("commit", newest.Commit).Msg("Reusing fresh cached snapshot")
			return newest, nil, nil
		}
	}

	head, headErr := s.headCommit(ctx)
	if headErr != nil {
		s.logger.Debug().Err(headErr).Msg("Head commit pre-resolution failed")
	}

	if head != "" {
		for _, snap := range cached {
			if snap.Commit != head {
				continue
			}
			snap.FetchedAt = now
			if err := writeSidecar(s.project, snap.Commit, now); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to revalidate snapshot metadata")
			}
			s.logger.Info().Str("commit", snap.Commit).Msg("Cached snapshot matches upstream head")
			s.pruneAsync(snap.Commit)
			return snap, nil, nil
		}
	}

	snap, err := s.download(ctx, head, now)
	if err != nil {
		if errors.IsCanceled(err) || ctx.Err() != nil {
			return nil, nil, err
		}
		if len(cached) > 0 {
			newest := cached[0]
			s.logger.Warn().Err(err).Str("commit", newest.Commit).Msg("Upstream unreachable; reusing cached snapshot")
			return newest, []error{&errors.OfflineWarning{Commit: newest.Commit, Err: err}}, nil
		}
		return nil, nil, errors.NewStartupError("no cached snapshot and upstream unreachable", err)
	}

	s.logger.Info().Str("commit", snap.Commit).Msg("Snapshot ready")
	s.pruneAsync(snap.Commit)
	return snap, nil, nil
}

// headCommit resolves the upstream head commit id via the commits API.
// Failure is recoverable; the archive path has its own commit resolution.
func (s *Syncer) headCommit(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/commits/%s",
		s.apiBase, constants.UpstreamOwner, constants.UpstreamRepo, constants.UpstreamRef)

	resp, err := s.client.Get(ctx, url)
	if err != nil {
		return "", &errors.APIError{
			Host:     s.apiBase,
			Message:  "commit lookup failed",
			Endpoint: url,
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &errors.APIError{
			Host:       s.apiBase,
			StatusCode: resp.StatusCode,
			Message:    "commit lookup failed",
			Endpoint:   url,
		}
	}

	var payload struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return "", errors.WrapParse("json", url, err)
	}
	return payload.SHA, nil
}

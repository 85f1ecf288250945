// Package constants provides shared constants used throughout the copilot-tui
// codebase. This includes timeouts, retention policies, file permissions, and
// other configuration values that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the upstream host
	DefaultHTTPTimeout = 30 * time.Second

	// ArchiveDownloadTimeout is the context deadline of an archive download
	// request. The HTTP client's own timeout still applies, and extraction
	// is not covered by it.
	ArchiveDownloadTimeout = 5 * time.Minute

	// CommandTimeout is a timeout value for CLI commands. No command
	// currently applies it.
	CommandTimeout = 10 * time.Minute
)

// Cache policy constants govern the snapshot cache lifecycle
const (
	// SnapshotFreshness is the window within which a cached snapshot is reused
	// without contacting the upstream host.
	SnapshotFreshness = 12 * time.Hour

	// SnapshotRetention is the number of cached snapshots kept after pruning.
	SnapshotRetention = 5
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Upstream identifies the repository the asset catalog is mirrored from.
const (
	// UpstreamOwner is the GitHub account owning the upstream repository.
	UpstreamOwner = "github"

	// UpstreamRepo is the upstream repository name.
	UpstreamRepo = "awesome-copilot"

	// UpstreamRef is the branch snapshots are taken from.
	UpstreamRef = "main"
)

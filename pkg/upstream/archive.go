package upstream

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentstation/utc"

	"github.com/astrosteveo/copilot-tui/pkg/constants"
	"github.com/astrosteveo/copilot-tui/pkg/errors"
)

// maxArchiveSize bounds an archive download. The upstream repository is a
// few megabytes of markdown; anything near this limit is malformed.
const maxArchiveSize = 512 << 20

// commitPattern matches an abbreviated or full commit id.
var commitPattern = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// download fetches the upstream archive, resolves its commit id, and
// extracts it into the cache.
func (s *Syncer) download(ctx context.Context, preResolved string, fetchedAt utc.Time) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ArchiveDownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.archiveURL, nil)
	if err != nil {
		return nil, errors.WrapIO("create", "GET "+s.archiveURL, err)
	}
	req.Header.Set("Accept", "application/zip")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &errors.APIError{
			Host:     s.archiveURL,
			Message:  "archive download failed",
			Endpoint: s.archiveURL,
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.APIError{
			Host:       s.archiveURL,
			StatusCode: resp.StatusCode,
			Message:    "archive download failed",
			Endpoint:   s.archiveURL,
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveSize))
	if err != nil {
		return nil, &errors.APIError{
			Host:     s.archiveURL,
			Message:  "archive download interrupted",
			Endpoint: s.archiveURL,
			Err:      err,
		}
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.WrapParse("zip", s.archiveURL, err)
	}

	commit := resolveCommit(preResolved, resp, reader, data)

	if existing, err := readSidecar(s.project, commit); err == nil && existing != nil {
		if _, statErr := os.Stat(s.project.SnapshotDir(commit)); statErr == nil {
			if err := writeSidecar(s.project, commit, fetchedAt); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to revalidate snapshot metadata")
			}
			return &Snapshot{Commit: commit, Root: s.project.SnapshotDir(commit), FetchedAt: fetchedAt}, nil
		}
	}

	root, err := s.extract(reader, commit)
	if err != nil {
		return nil, err
	}

	if err := writeSidecar(s.project, commit, fetchedAt); err != nil {
		return nil, err
	}
	return &Snapshot{Commit: commit, Root: root, FetchedAt: fetchedAt}, nil
}

// resolveCommit determines the commit id for a downloaded archive. In
// order: the pre-resolved head, a commit header on the response, the
// top-level directory suffix, then a content hash of the archive bytes
// truncated to commit-id length.
func resolveCommit(preResolved string, resp *http.Response, reader *zip.Reader, data []byte) string {
	if commitPattern.MatchString(preResolved) {
		return preResolved
	}

	for _, header := range []string{"X-Commit-Id", "Etag"} {
		value := strings.Trim(resp.Header.Get(header), `W/"`)
		if commitPattern.MatchString(value) {
			return value
		}
	}

	if top := topLevelDir(reader); top != "" {
		if i := strings.LastIndex(top, "-"); i >= 0 {
			if suffix := top[i+1:]; commitPattern.MatchString(suffix) {
				return suffix
			}
		}
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:40]
}

// topLevelDir returns the archive's single top-level directory name,
// or "" when the layout is unexpected.
func topLevelDir(reader *zip.Reader) string {
	top := ""
	for _, file := range reader.File {
		name := strings.TrimPrefix(file.Name, "./")
		first, _, found := strings.Cut(name, "/")
		if !found || first == "" {
			continue
		}
		if top == "" {
			top = first
		} else if top != first {
			return ""
		}
	}
	return top
}

// extract writes the archive tree into the cache under the commit id,
// stripping the top-level directory. Extraction goes to a temp directory
// first and is renamed into place so a partial extraction is never
// visible as a snapshot.
func (s *Syncer) extract(reader *zip.Reader, commit string) (string, error) {
	dest := s.project.SnapshotDir(commit)

	tmp, err := os.MkdirTemp(s.project.Cache, ".extract-*")
	if err != nil {
		return "", errors.WrapIO("create", s.project.Cache, err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	for _, file := range reader.File {
		name := strings.TrimPrefix(file.Name, "./")
		_, rel, found := strings.Cut(name, "/")
		if !found || rel == "" {
			continue
		}

		target := filepath.Join(tmp, filepath.FromSlash(rel))
		if !strings.HasPrefix(target, tmp+string(os.PathSeparator)) {
			return "", errors.NewValidationError("archive", file.Name, "entry escapes extraction root")
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, constants.DirPermissions); err != nil {
				return "", errors.WrapIO("create", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), constants.DirPermissions); err != nil {
			return "", errors.WrapIO("create", filepath.Dir(target), err)
		}
		if err := extractFile(file, target); err != nil {
			return "", err
		}
	}

	if err := os.RemoveAll(dest); err != nil {
		return "", errors.WrapIO("delete", dest, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return "", errors.WrapIO("rename", dest, err)
	}
	return dest, nil
}

// extractFile writes one archive entry to disk.
func extractFile(file *zip.File, target string) error {
	src, err := file.Open()
	if err != nil {
		return errors.WrapIO("read", file.Name, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", target, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return errors.WrapIO("write", target, err)
	}
	return dst.Close()
}

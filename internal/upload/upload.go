// Package upload sends Alpha Progression CSV exports from a local directory
// to a RepCycle server, skipping files it has already sent.
package upload

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	SessionsSent int
	LogsInserted int
	LogsReplaced int64

	// Unmatched holds exercise names the server could not match to a
	// workout definition, across all files.
	Unmatched []string
}

// Uploader walks an export directory and POSTs new or changed CSV files to
// the RepCycle server.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// pendingFile is an export that has not been uploaded in its current form.
type pendingFile struct {
	path    string
	relPath string
	size    int64
	hash    string
}

// Run executes the upload pipeline. A file that fails is logged and counted
// but does not stop the others.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := FindExports(u.dir)
	if err != nil {
		return &u.stats, err
	}

	unmatched := make(map[string]bool)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++

		p, err := u.check(ctx, f)
		if err != nil {
			u.log.Warn("state check failed", "file", f, "error", err)
			u.stats.FilesErrored++
			continue
		}
		if p == nil {
			u.stats.FilesSkipped++
			continue
		}

		if u.dryRun {
			u.log.Info("would upload", "file", p.relPath, "size", p.size)
			u.stats.FilesUploaded++
			continue
		}

		if err := u.send(ctx, p, unmatched); err != nil {
			u.log.Warn("upload failed", "file", p.relPath, "error", err)
			u.stats.FilesErrored++
			continue
		}
		u.stats.FilesUploaded++
	}

	for name := range unmatched {
		u.stats.Unmatched = append(u.stats.Unmatched, name)
	}
	sort.Strings(u.stats.Unmatched)
	return &u.stats, nil
}

// check returns nil when path was already uploaded unchanged.
func (u *Uploader) check(ctx context.Context, path string) (*pendingFile, error) {
	relPath, err := filepath.Rel(u.dir, path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	hash, err := HashFile(path)
	if err != nil {
		return nil, err
	}

	uploaded, err := u.state.IsUploaded(ctx, relPath, info.Size(), hash)
	if err != nil || uploaded {
		return nil, err
	}
	return &pendingFile{path: path, relPath: relPath, size: info.Size(), hash: hash}, nil
}

func (u *Uploader) send(ctx context.Context, p *pendingFile, unmatched map[string]bool) error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return err
	}

	result, err := u.client.SendAlphaCSV(ctx, filepath.Base(p.path), data)
	if err != nil {
		return err
	}

	u.stats.SessionsSent += result.SessionsReceived
	u.stats.LogsInserted += result.LogsInserted
	u.stats.LogsReplaced += result.LogsReplaced
	for _, name := range result.Unmatched {
		unmatched[name] = true
	}
	u.log.Info("uploaded", "file", p.relPath, "sessions", result.SessionsReceived, "logs", result.LogsInserted)

	return u.state.MarkUploaded(ctx, UploadedFile{
		Path:         p.relPath,
		Size:         p.size,
		Hash:         p.hash,
		LogsInserted: result.LogsInserted,
	})
}

// FindExports returns every .csv file under dir, sorted by path.
func FindExports(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

package core

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"nova/internal/domain"
	"nova/internal/storage/cache"
)

// RuntimePreparer provisions the patching-framework runtime into a freshly
// created profile directory: download the archive, unpack it in place, then
// mark the profile ready. It runs detached from profile creation.
type RuntimePreparer struct {
	fetcher  *Fetcher
	profiles *ProfileManager
	tracker  *ProgressTracker
	cache    *cache.Cache // nil disables archive caching
	log      *zap.SugaredLogger
}

// NewRuntimePreparer creates a preparer. archiveCache may be nil to disable
// caching; a nil logger disables logging.
func NewRuntimePreparer(fetcher *Fetcher, profiles *ProfileManager, tracker *ProgressTracker, archiveCache *cache.Cache, log *zap.SugaredLogger) *RuntimePreparer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &RuntimePreparer{
		fetcher:  fetcher,
		profiles: profiles,
		tracker:  tracker,
		cache:    archiveCache,
		log:      log,
	}
}

// PrepareRequest names one runtime provisioning job.
type PrepareRequest struct {
	ProfileID      string
	ProfilePath    string
	ArchiveURL     string
	ArchiveVersion string // cache key; empty skips the cache
}

// Preparation is the handle for one in-flight provisioning run. Callers that
// must outlive the run wait on it; callers that abandon it cancel it.
type Preparation struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

func (p *Preparation) complete(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	close(p.done)
}

// Done returns a channel closed when the run finishes, whatever the outcome.
func (p *Preparation) Done() <-chan struct{} { return p.done }

// Cancel aborts the run. Wait then returns the run's failure.
func (p *Preparation) Cancel() { p.cancel() }

// Wait blocks until the run finishes or ctx expires and returns the run's
// error.
func (p *Preparation) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.err
	}
}

// PrepareAsync fires Prepare on a fresh goroutine and returns a handle to it.
// The creation call never blocks on the download; the caller decides whether
// to wait on, observe, or cancel the run. Failures are logged here as well,
// for callers that drop the handle.
func (rp *RuntimePreparer) PrepareAsync(req PrepareRequest, progressFn ProgressFunc) *Preparation {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Preparation{done: make(chan struct{}), cancel: cancel}

	go func() {
		defer cancel()
		err := rp.Prepare(ctx, req, progressFn)
		if err != nil {
			rp.log.Errorw("runtime preparation failed", "profile", req.ProfileID, "error", err)
		}
		p.complete(err)
	}()

	return p
}

// Prepare downloads and unpacks the runtime archive into the profile
// directory, then persists the profile's installed flag. Progress events flow
// to the tracker and the optional progressFn. The profile's tracker entry is
// removed on every exit path. Re-running after a failure is safe: extraction
// overwrites whatever a previous partial run left behind.
func (rp *RuntimePreparer) Prepare(ctx context.Context, req PrepareRequest, progressFn ProgressFunc) (err error) {
	emit := func(ev domain.ProgressEvent) {
		rp.tracker.Set(req.ProfileID, ev)
		if progressFn != nil {
			progressFn(ev)
		}
	}
	defer rp.tracker.Clear(req.ProfileID)

	emit(domain.ProgressEvent{Stage: domain.StageDownloading, Message: "Starting download..."})

	archive, err := rp.obtainArchive(ctx, req, emit)
	if err != nil {
		return err
	}

	emit(domain.ProgressEvent{Stage: domain.StageExtracting, Message: "Extracting..."})
	if err := extractArchive(archive, req.ProfilePath, emit); err != nil {
		return err
	}

	emit(domain.ProgressEvent{Stage: domain.StageComplete, Progress: 1, Message: "Installation complete"})

	if err := rp.profiles.SetRuntimeInstalled(req.ProfileID); err != nil {
		return fmt.Errorf("marking runtime installed: %w", err)
	}

	rp.log.Infow("runtime environment ready", "profile", req.ProfileID)
	return nil
}

// obtainArchive returns the runtime archive bytes, preferring the cache.
func (rp *RuntimePreparer) obtainArchive(ctx context.Context, req PrepareRequest, emit ProgressFunc) ([]byte, error) {
	if rp.cache != nil && req.ArchiveVersion != "" && rp.cache.Exists(req.ArchiveVersion) {
		emit(domain.ProgressEvent{Stage: domain.StageDownloading, Progress: 1, Message: "Using cached runtime archive"})
		return rp.cache.Read(req.ArchiveVersion)
	}

	data, err := rp.fetcher.FetchWithProgress(ctx, req.ArchiveURL, emit)
	if err != nil {
		return nil, err
	}

	if rp.cache != nil && req.ArchiveVersion != "" {
		if err := rp.cache.Write(req.ArchiveVersion, data); err != nil {
			rp.log.Warnw("failed to cache runtime archive", "error", err)
		}
	}

	return data, nil
}

// extractArchive unpacks a zip payload entry-by-entry into destDir,
// preserving relative paths and creating parent directories before each
// write. Existing files are truncated, so stale partial state from an
// interrupted run is overwritten.
func extractArchive(data []byte, destDir string, emit ProgressFunc) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}

	total := len(r.File)
	for i, f := range r.File {
		if err := extractEntry(f, destDir); err != nil {
			return err
		}
		emit(domain.ProgressEvent{
			Stage:    domain.StageExtracting,
			Progress: float64(i+1) / float64(total),
			Message:  fmt.Sprintf("Extracting... %d/%d", i+1, total),
		})
	}

	return nil
}

func extractEntry(f *zip.File, destDir string) (err error) {
	destPath, err := sanitizePath(destDir, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(destPath, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening archive entry %s: %w", f.Name, err)
	}
	defer func() {
		if cerr := rc.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing archive entry %s: %w", f.Name, cerr)
		}
	}()

	outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return fmt.Errorf("creating file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := outFile.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing file %s: %w", destPath, cerr)
		}
	}()

	if _, err = io.Copy(outFile, rc); err != nil {
		return fmt.Errorf("writing file %s: %w", destPath, err)
	}

	return nil
}

// sanitizePath ensures an extracted entry stays within destDir, rejecting
// zip-slip paths like "../../etc/passwd".
func sanitizePath(destDir, filePath string) (string, error) {
	destPath := filepath.Join(destDir, filepath.Clean(filePath))

	cleanDest := filepath.Clean(destDir)
	if destPath != cleanDest && !strings.HasPrefix(destPath, cleanDest+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal detected: %s", filePath)
	}

	return destPath, nil
}

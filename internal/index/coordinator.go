// Package index coordinates the ingest pipeline: recover the newest artifact,
// accumulate embeddings document by document, and checkpoint durably at a
// fixed cadence.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/docstackhq/docvec/internal/config"
	"github.com/docstackhq/docvec/internal/embed"
	"github.com/docstackhq/docvec/internal/errors"
	"github.com/docstackhq/docvec/internal/extract"
	"github.com/docstackhq/docvec/internal/source"
	"github.com/docstackhq/docvec/internal/storage"
	"github.com/docstackhq/docvec/internal/store"
)

// State is the coordinator lifecycle phase.
type State int

const (
	// StateEmpty means no prior artifact was found anywhere.
	StateEmpty State = iota

	// StateLoaded means a prior artifact was recovered.
	StateLoaded

	// StateAccumulating means documents are being embedded and merged.
	StateAccumulating

	// StateCheckpointing means a checkpoint save/upload is in flight.
	StateCheckpointing

	// StateDone means the run finished.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateAccumulating:
		return "accumulating"
	case StateCheckpointing:
		return "checkpointing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// currentDir is the work-dir subdirectory holding the recovered artifact.
const currentDir = "current"

// RunResult summarizes one ingest run.
type RunResult struct {
	// Processed counts documents whose units were all appended.
	Processed int

	// Skipped counts documents that produced no appended units: unreadable
	// or blank PDFs, and documents whose embedding failed outright.
	Skipped int

	// Units is the total number of text units appended this run.
	Units int

	// Checkpoints is the number of checkpoints written and uploaded.
	Checkpoints int

	// Total is the artifact's unit count after the run.
	Total int

	State State
}

// Coordinator drives the ingest pipeline end to end.
type Coordinator struct {
	cfg       *config.Config
	storage   storage.Client
	embedder  embed.Embedder
	extractor *extract.Extractor
	resolver  *source.Resolver
	logger    *slog.Logger

	state State
	runID string
}

// New creates a Coordinator from configuration and the shared storage client
// and embedder. The embedder's lifecycle belongs to the caller.
func New(cfg *config.Config, client storage.Client, embedder embed.Embedder) (*Coordinator, error) {
	extractor, err := extract.New(extract.Options{
		MaxPageTokens: cfg.Extract.MaxPageTokens,
		Encoding:      cfg.Extract.Encoding,
	})
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		cfg:       cfg,
		storage:   client,
		embedder:  embedder,
		extractor: extractor,
		resolver: source.NewResolver(client,
			cfg.Storage.Bucket, cfg.Storage.SourcePrefix, cfg.Cache.Dir),
		logger: slog.Default().With("component", "index"),
		state:  StateEmpty,
		runID:  time.Now().Format("20060102_150405"),
	}, nil
}

// State returns the coordinator's current lifecycle phase.
func (c *Coordinator) State() State {
	return c.state
}

// Run executes one full ingest: recover, resolve sources, accumulate, and
// checkpoint. The work directory is locked for the duration; a second
// concurrent run fails fast instead of corrupting the artifact.
func (c *Coordinator) Run(ctx context.Context) (*RunResult, error) {
	if err := os.MkdirAll(c.cfg.Checkpoint.WorkDir, 0o755); err != nil {
		return nil, errors.CheckpointError("failed to create work directory", err).
			WithDetail("dir", c.cfg.Checkpoint.WorkDir)
	}

	lock := flock.New(filepath.Join(c.cfg.Checkpoint.WorkDir, ".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.CheckpointError("failed to acquire work directory lock", err)
	}
	if !locked {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"another ingest run holds the work directory lock", nil).
			WithDetail("dir", c.cfg.Checkpoint.WorkDir)
	}
	defer func() { _ = lock.Unlock() }()

	artifact, err := c.Recover(ctx)
	if err != nil {
		return nil, err
	}

	paths, err := c.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	result := &RunResult{State: c.state}
	if len(paths) == 0 {
		c.logger.Info("no source documents found", "prefix", c.cfg.Storage.SourcePrefix)
		c.state = StateDone
		result.State = c.state
		result.Total = artifact.Count()
		return result, nil
	}

	c.state = StateAccumulating
	sinceCheckpoint := 0

	for i, path := range paths {
		outcome, err := c.extractor.Extract(path)
		if err != nil {
			return nil, err
		}
		if outcome.Skipped() {
			c.logger.Warn("skipping document",
				"path", path, "reason", outcome.Skip)
			result.Skipped++
			continue
		}

		appended, err := artifact.Append(ctx, c.embedder, outcome.Units)
		result.Units += appended
		if err != nil {
			// Partial units stay in the artifact; the document itself does
			// not count toward the checkpoint cadence.
			c.logger.Error("embedding failed, skipping document",
				"path", path, "appended", appended,
				"total_units", len(outcome.Units), "error", err)
			result.Skipped++
			continue
		}

		result.Processed++
		sinceCheckpoint++
		c.logger.Info("document indexed",
			"path", path,
			"pages", appended,
			"progress", fmt.Sprintf("%d/%d", i+1, len(paths)))

		if sinceCheckpoint >= c.cfg.Checkpoint.Every {
			if err := c.checkpoint(ctx, artifact); err != nil {
				return nil, err
			}
			result.Checkpoints++
			sinceCheckpoint = 0
			c.state = StateAccumulating
		}
	}

	// The final document always ends up in a checkpoint.
	if sinceCheckpoint > 0 {
		if err := c.checkpoint(ctx, artifact); err != nil {
			return nil, err
		}
		result.Checkpoints++
	}

	c.state = StateDone
	result.State = c.state
	result.Total = artifact.Count()

	c.logger.Info("ingest complete",
		"processed", result.Processed,
		"skipped", result.Skipped,
		"units", result.Units,
		"checkpoints", result.Checkpoints,
		"total_units", result.Total)
	return result, nil
}

// Recover loads the newest usable artifact: the local copy in the work
// directory if present, otherwise the remote checkpoint, otherwise a fresh
// empty artifact. A corrupt artifact or a storage failure is fatal; only
// a cleanly absent artifact falls through to empty.
func (c *Coordinator) Recover(ctx context.Context) (*store.Artifact, error) {
	dir := filepath.Join(c.cfg.Checkpoint.WorkDir, currentDir)

	artifact, err := store.Load(dir)
	if err != nil {
		return nil, errors.New(errors.ErrCodeArtifactCorrupt,
			"failed to load local artifact", err).WithDetail("dir", dir)
	}
	if artifact != nil {
		c.state = StateLoaded
		c.logger.Info("recovered local artifact",
			"dir", dir, "units", artifact.Count(), "model", artifact.ModelName())
		return artifact, nil
	}

	fetched, err := c.fetchRemote(ctx, dir)
	if err != nil {
		return nil, err
	}
	if fetched {
		artifact, err = store.Load(dir)
		if err != nil {
			return nil, errors.New(errors.ErrCodeArtifactCorrupt,
				"failed to load fetched artifact", err).WithDetail("dir", dir)
		}
		if artifact != nil {
			c.state = StateLoaded
			c.logger.Info("recovered remote artifact",
				"units", artifact.Count(), "model", artifact.ModelName())
			return artifact, nil
		}
	}

	c.state = StateEmpty
	c.logger.Info("no prior artifact found, starting empty")
	return store.New(c.embedder.Dimensions(), c.embedder.ModelName()), nil
}

// fetchRemote downloads both artifact files from the checkpoint prefix into
// dir. Returns false without error when the remote artifact is absent, which
// means either file missing. Partial downloads are removed so the local
// directory never holds a single-file artifact.
func (c *Coordinator) fetchRemote(ctx context.Context, dir string) (bool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, errors.CheckpointError("failed to create artifact directory", err).
			WithDetail("dir", dir)
	}

	for _, name := range []string{store.VectorsFile, store.DocstoreFile} {
		key := c.cfg.Storage.CheckpointPrefix + name
		localPath := filepath.Join(dir, name)

		err := c.storage.Download(ctx, c.cfg.Storage.Bucket, key, localPath)
		if err == nil {
			continue
		}
		if storage.IsNotFound(err) {
			c.logger.Info("no remote artifact", "key", key)
			for _, n := range []string{store.VectorsFile, store.DocstoreFile} {
				_ = os.Remove(filepath.Join(dir, n))
			}
			return false, nil
		}
		return false, errors.FetchError("failed to fetch remote artifact", err).
			WithDetail("key", key)
	}

	return true, nil
}

// checkpoint saves the artifact into a fresh timestamped directory under the
// work dir, refreshes the local recovery copy, and uploads every file in the
// checkpoint directory. Any failure here is fatal: progress past an
// unuploadable checkpoint would be unrecoverable progress.
func (c *Coordinator) checkpoint(ctx context.Context, artifact *store.Artifact) error {
	c.state = StateCheckpointing

	dir := filepath.Join(c.cfg.Checkpoint.WorkDir,
		"index_"+time.Now().Format("20060102_150405"))
	if err := artifact.Save(dir); err != nil {
		return errors.CheckpointError("failed to save checkpoint", err).
			WithDetail("dir", dir)
	}

	if err := artifact.Save(filepath.Join(c.cfg.Checkpoint.WorkDir, currentDir)); err != nil {
		return errors.CheckpointError("failed to refresh local artifact", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.CheckpointError("failed to read checkpoint directory", err).
			WithDetail("dir", dir)
	}

	prefix := c.cfg.Storage.CheckpointPrefix
	if c.cfg.Checkpoint.KeepHistory {
		prefix += c.runID + "/"
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		key := prefix + entry.Name()
		if err := c.storage.Upload(ctx, filepath.Join(dir, entry.Name()),
			c.cfg.Storage.Bucket, key); err != nil {
			return errors.New(errors.ErrCodeObjectUpload,
				"failed to upload checkpoint file", err).WithDetail("key", key)
		}
	}

	c.logger.Info("checkpoint uploaded",
		"dir", dir, "prefix", prefix, "units", artifact.Count())
	return nil
}

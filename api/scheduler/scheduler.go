package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lokmitra/case-api/databases"
	"github.com/lokmitra/case-api/models"
)

const sweepTimeout = time.Minute

// Sweeper periodically deletes disk uploads that no persisted case
// references. Files uploaded for a submission that later failed validation
// would otherwise accumulate forever.
type Sweeper struct {
	cron      *cron.Cron
	DB        databases.CaseDatabase
	UploadDir string
	Grace     time.Duration
}

// NewSweeper creates a sweeper for the given store and uploads directory.
// Files younger than grace are never touched, an in-flight submission may
// not have persisted its case yet.
func NewSweeper(db databases.CaseDatabase, uploadDir string, grace time.Duration) *Sweeper {
	return &Sweeper{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		DB:        db,
		UploadDir: uploadDir,
		Grace:     grace,
	}
}

// Start registers the sweep on the given cron spec and begins the schedule
func (s *Sweeper) Start(spec string) {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.Sweep(); err != nil {
			zap.S().Errorw("orphan upload sweep failed", "error", err)
		}
	})
	if err != nil {
		zap.S().Errorw("failed to register orphan sweep job", "spec", spec, "error", err)
		return
	}
	s.cron.Start()
	zap.S().Infow("orphan upload sweeper started", "spec", spec, "dir", s.UploadDir)
}

// Stop gracefully stops the schedule
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("orphan upload sweeper stopped")
}

// Sweep deletes every upload that is past the grace period and not
// referenced by any case
func (s *Sweeper) Sweep() error {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	all, err := s.DB.Find(ctx)
	if err != nil {
		return err
	}
	referenced := referencedNames(all)

	entries, err := os.ReadDir(s.UploadDir)
	if err != nil {
		return err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if referenced[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) < s.Grace {
			continue
		}
		if err := os.Remove(filepath.Join(s.UploadDir, entry.Name())); err != nil {
			zap.S().Warnw("failed to remove orphaned upload", "name", entry.Name(), "error", err)
			continue
		}
		removed++
		zap.S().Infow("removed orphaned upload", "name", entry.Name())
	}

	zap.S().Infow("orphan upload sweep complete", "scanned", len(entries), "removed", removed)
	return nil
}

// referencedNames collects the on-disk file names reachable from any case
func referencedNames(all []models.Case) map[string]bool {
	names := make(map[string]bool)
	add := func(ref string) {
		if strings.HasPrefix(ref, "/uploads/") {
			names[strings.TrimPrefix(ref, "/uploads/")] = true
		}
	}
	addPtr := func(ref *string) {
		if ref != nil {
			add(*ref)
		}
	}

	for _, c := range all {
		for _, ref := range c.Proofs {
			add(ref)
		}
		addPtr(c.Voice)
		addPtr(c.Video)
		for _, ref := range c.Solution.Files {
			add(ref)
		}
		addPtr(c.Solution.Voice)
		addPtr(c.Solution.Video)
	}
	return names
}

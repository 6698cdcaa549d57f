package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokmitra/case-api/databases"
	"github.com/lokmitra/case-api/models"
)

func writeUpload(t *testing.T, dir, name string, age time.Duration) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	if age > 0 {
		old := time.Now().Add(-age)
		require.NoError(t, os.Chtimes(path, old, old))
	}
}

func TestSweepRemovesOrphans(t *testing.T) {
	dir := t.TempDir()
	uploadDir := filepath.Join(dir, "uploads")
	require.NoError(t, os.MkdirAll(uploadDir, 0o755))

	db, err := databases.NewCaseFile(filepath.Join(dir, "cases.json"))
	require.NoError(t, err)

	voice := "/uploads/kept-voice.mp3"
	require.NoError(t, db.InsertOne(context.Background(), models.Case{
		ID:     "CASE-LM-123456",
		Status: models.CaseStatusInReview,
		Proofs: []string{"/uploads/kept-proof.jpg"},
		Voice:  &voice,
		Solution: models.Solution{
			Status: models.SolutionStatusSubmitted,
			Files:  []string{"/uploads/kept-solution.pdf"},
		},
	}))

	writeUpload(t, uploadDir, "kept-proof.jpg", 2*time.Hour)
	writeUpload(t, uploadDir, "kept-voice.mp3", 2*time.Hour)
	writeUpload(t, uploadDir, "kept-solution.pdf", 2*time.Hour)
	writeUpload(t, uploadDir, "orphan.jpg", 2*time.Hour)
	writeUpload(t, uploadDir, "fresh-orphan.jpg", 0)

	s := NewSweeper(db, uploadDir, time.Hour)
	require.NoError(t, s.Sweep())

	assert.FileExists(t, filepath.Join(uploadDir, "kept-proof.jpg"))
	assert.FileExists(t, filepath.Join(uploadDir, "kept-voice.mp3"))
	assert.FileExists(t, filepath.Join(uploadDir, "kept-solution.pdf"))
	// fresh files survive the grace period even when unreferenced
	assert.FileExists(t, filepath.Join(uploadDir, "fresh-orphan.jpg"))
	assert.NoFileExists(t, filepath.Join(uploadDir, "orphan.jpg"))
}

func TestSweepMissingUploadDir(t *testing.T) {
	db, err := databases.NewCaseFile(filepath.Join(t.TempDir(), "cases.json"))
	require.NoError(t, err)

	s := NewSweeper(db, filepath.Join(t.TempDir(), "does-not-exist"), time.Hour)
	assert.Error(t, s.Sweep())
}

func TestReferencedNames(t *testing.T) {
	video := "/uploads/clip.mp4"
	external := "https://res.cloudinary.com/demo/cases/clip.mp4"

	names := referencedNames([]models.Case{
		{
			Proofs: []string{"/uploads/a.jpg", external},
			Video:  &video,
			Solution: models.Solution{
				Files: []string{"/uploads/b.pdf"},
			},
		},
	})

	assert.True(t, names["a.jpg"])
	assert.True(t, names["b.pdf"])
	assert.True(t, names["clip.mp4"])
	// cloudinary URLs are not local files
	assert.Len(t, names, 3)
}

func TestSweeperStartAndStop(t *testing.T) {
	dir := t.TempDir()
	uploadDir := filepath.Join(dir, "uploads")
	require.NoError(t, os.MkdirAll(uploadDir, 0o755))

	db, err := databases.NewCaseFile(filepath.Join(dir, "cases.json"))
	require.NoError(t, err)

	s := NewSweeper(db, uploadDir, time.Hour)
	s.Start("@every 1h")
	s.Stop()
}

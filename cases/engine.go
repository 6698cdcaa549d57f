package cases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/lokmitra/case-api/databases"
	"github.com/lokmitra/case-api/models"
)

// Sentinel errors; handlers map these onto HTTP statuses
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Attachment count limits per case
const (
	MaxProofFiles    = 10
	MaxSolutionFiles = 10
)

const (
	caseIDPrefix   = "CASE-LM-"
	caseIDAlphabet = "0123456789"
	caseIDDigits   = 6
	caseIDRetries  = 5
)

// Broadcaster receives lifecycle events; nil disables broadcasting
type Broadcaster interface {
	Broadcast(event string, c models.Case)
}

// Engine owns the case entity and its status state machine. All mutating
// operations run under a single mutex so each read-modify-write span is
// atomic within the process; multi-instance deployments need the mongo
// backend, a local file cannot arbitrate between processes.
type Engine struct {
	mu   sync.Mutex
	db   databases.CaseDatabase
	feed Broadcaster
}

// New creates a lifecycle engine on top of the given case store
func New(db databases.CaseDatabase, feed Broadcaster) *Engine {
	return &Engine{db: db, feed: feed}
}

// SubmitCaseInput carries the citizen-side fields; media references are
// already stored and resolved by the caller.
type SubmitCaseInput struct {
	Category    string
	Description string
	Language    string
	Location    string
	Name        string
	Mobile      string
	Proofs      []string
	Voice       *string
	Video       *string
}

// SubmitSolutionInput carries the student-side solution submission
type SubmitSolutionInput struct {
	ID           string
	StudentName  string
	SolutionText string
	DocsNeeded   string
	Files        []string
	Voice        *string
	Video        *string
}

// SubmitCase validates the input, constructs a new case with its creation
// defaults and appends it to the store
func (e *Engine) SubmitCase(ctx context.Context, in SubmitCaseInput) (*models.Case, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if len(in.Proofs) > MaxProofFiles {
		return nil, fmt.Errorf("%w: at most %d proof files are allowed", ErrValidation, MaxProofFiles)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	language := in.Language
	if language == "" {
		language = "en"
	}
	proofs := in.Proofs
	if proofs == nil {
		proofs = []string{}
	}

	c := models.Case{
		ID:          e.newCaseID(ctx),
		Title:       models.DeriveTitle(in.Description),
		Name:        in.Name,
		Mobile:      models.MaskMobile(in.Mobile),
		Category:    models.NormalizeCategory(in.Category),
		Description: in.Description,
		Language:    language,
		Location:    in.Location,
		Status:      models.CaseStatusInReview,
		AcceptedBy:  nil,
		Proofs:      proofs,
		Voice:       in.Voice,
		Video:       in.Video,
		Solution:    models.NewPendingSolution(),
		CreatedAt:   time.Now().UTC(),
	}

	if err := e.db.InsertOne(ctx, c); err != nil {
		return nil, fmt.Errorf("insert case: %w", err)
	}

	zap.S().Infow("saved new case", "id", c.ID, "category", c.Category)
	e.broadcast("case_created", c)
	return &c, nil
}

// AcceptCase moves a case to Accepted and records the accepting student.
// Re-accepting an accepted case overwrites acceptedBy; a solved case is
// terminal and is rejected.
func (e *Engine) AcceptCase(ctx context.Context, id, studentName string) (*models.Case, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(studentName) == "" {
		return nil, fmt.Errorf("%w: id and studentName are required", ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := e.db.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Status.CanTransition(models.CaseStatusAccepted) {
		return nil, fmt.Errorf("%w: cannot accept a case with status %q", ErrInvalidTransition, c.Status)
	}

	c.Status = models.CaseStatusAccepted
	c.AcceptedBy = &studentName
	// solution.status stays whatever it was

	if err := e.db.UpdateOne(ctx, *c); err != nil {
		return nil, fmt.Errorf("update case: %w", err)
	}

	zap.S().Infow("case accepted", "id", c.ID, "studentName", studentName)
	e.broadcast("case_accepted", *c)
	return c, nil
}

// SubmitSolution replaces the whole solution sub-entity and marks the case
// Solved, atomically together. Prior Accept is not required; a solved case
// is terminal.
func (e *Engine) SubmitSolution(ctx context.Context, in SubmitSolutionInput) (*models.Case, error) {
	if strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.StudentName) == "" || strings.TrimSpace(in.SolutionText) == "" {
		return nil, fmt.Errorf("%w: id, studentName and solutionText are required", ErrValidation)
	}
	if len(in.Files) > MaxSolutionFiles {
		return nil, fmt.Errorf("%w: at most %d solution files are allowed", ErrValidation, MaxSolutionFiles)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := e.db.FindOne(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if !c.Status.CanTransition(models.CaseStatusSolved) {
		return nil, fmt.Errorf("%w: cannot solve a case with status %q", ErrInvalidTransition, c.Status)
	}

	files := in.Files
	if files == nil {
		files = []string{}
	}
	now := time.Now().UTC()
	studentName := in.StudentName

	c.Solution = models.Solution{
		Status:      models.SolutionStatusSubmitted,
		Text:        in.SolutionText,
		DocsNeeded:  in.DocsNeeded,
		Files:       files,
		Voice:       in.Voice,
		Video:       in.Video,
		StudentName: &studentName,
		SubmittedAt: &now,
	}
	c.Status = models.CaseStatusSolved

	if err := e.db.UpdateOne(ctx, *c); err != nil {
		return nil, fmt.Errorf("update case: %w", err)
	}

	zap.S().Infow("solution submitted", "id", c.ID, "studentName", studentName)
	e.broadcast("case_solved", *c)
	return c, nil
}

// ListCases returns the full collection in insertion order
func (e *Engine) ListCases(ctx context.Context) ([]models.Case, error) {
	return e.db.Find(ctx)
}

// GetCase returns the case with the given id
func (e *Engine) GetCase(ctx context.Context, id string) (*models.Case, error) {
	return e.db.FindOne(ctx, id)
}

// newCaseID generates a CASE-LM-###### id. Uniqueness is best-effort: a
// handful of retries against the store, then the last candidate wins.
func (e *Engine) newCaseID(ctx context.Context) string {
	var id string
	for i := 0; i < caseIDRetries; i++ {
		id = caseIDPrefix + gonanoid.MustGenerate(caseIDAlphabet, caseIDDigits)
		if _, err := e.db.FindOne(ctx, id); errors.Is(err, databases.ErrCaseNotFound) {
			return id
		}
		zap.S().Warnw("case id collision, regenerating", "id", id)
	}
	return id
}

func (e *Engine) broadcast(event string, c models.Case) {
	if e.feed != nil {
		e.feed.Broadcast(event, c)
	}
}

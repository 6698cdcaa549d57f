package databases

import (
	"context"
	"errors"

	"github.com/lokmitra/case-api/models"
)

// ErrCaseNotFound is returned when no case matches the requested id
var ErrCaseNotFound = errors.New("case not found")

// CaseDatabase contains the methods to use with the case store. The default
// backend is a flat JSON file; a mongo-backed implementation can be swapped
// in without touching the lifecycle engine.
type CaseDatabase interface {
	Find(ctx context.Context) ([]models.Case, error)
	FindOne(ctx context.Context, id string) (*models.Case, error)
	InsertOne(ctx context.Context, c models.Case) error
	UpdateOne(ctx context.Context, c models.Case) error
}

package databases

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lokmitra/case-api/models"
)

const caseCollectionName = "cases"

// mongoCaseDatabase is the CaseDatabase backend for deployments that need a
// shared transactional store instead of a local file. Selected when DB_URI
// is set.
type mongoCaseDatabase struct {
	coll *mongo.Collection
}

// NewMongoCaseDatabase connects to mongo and returns a case database backed
// by the "cases" collection
func NewMongoCaseDatabase(ctx context.Context, uri, dbName string) (CaseDatabase, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &mongoCaseDatabase{coll: client.Database(dbName).Collection(caseCollectionName)}, nil
}

func (m *mongoCaseDatabase) Find(ctx context.Context) ([]models.Case, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := m.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var cases []models.Case
	if err := cursor.All(ctx, &cases); err != nil {
		return nil, err
	}
	if cases == nil {
		cases = []models.Case{}
	}
	return cases, nil
}

func (m *mongoCaseDatabase) FindOne(ctx context.Context, id string) (*models.Case, error) {
	c := &models.Case{}
	err := m.coll.FindOne(ctx, bson.M{"id": id}).Decode(c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (m *mongoCaseDatabase) InsertOne(ctx context.Context, c models.Case) error {
	_, err := m.coll.InsertOne(ctx, c)
	return err
}

func (m *mongoCaseDatabase) UpdateOne(ctx context.Context, c models.Case) error {
	res, err := m.coll.ReplaceOne(ctx, bson.M{"id": c.ID}, c)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCaseNotFound
	}
	return nil
}

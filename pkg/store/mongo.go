package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/nglyph"
)

// Default MongoDB names.
const (
	DefaultDatabase   = "glyphtools"
	DefaultCollection = "compositions"
)

// MongoStore keeps compositions in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and pings the server. Empty names fall back
// to DefaultDatabase and DefaultCollection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Put implements Store.
func (s *MongoStore) Put(ctx context.Context, f *nglyph.File) (string, error) {
	r, err := newRecord(f)
	if err != nil {
		return "", err
	}
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "store composition")
	}
	return r.ID, nil
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, id string) (*nglyph.File, error) {
	if err := errors.ValidateCompositionID(id); err != nil {
		return nil, err
	}
	var r record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load composition %s", id)
	}
	return r.file()
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)

package dedup

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/trigen/pkg/bucket"
	"github.com/matzehuels/trigen/pkg/cache"
	"github.com/matzehuels/trigen/pkg/canon"
)

// MongoFactory stores all buckets in one collection with a unique index on
// (bucket, cert).
type MongoFactory struct {
	client *mongo.Client
	coll   *mongo.Collection

	indexOnce sync.Once
	indexErr  error
}

type certDoc struct {
	Bucket string `bson:"bucket"`
	Cert   string `bson:"cert"`
}

// OpenMongo connects to uri and uses database.certificates.
func OpenMongo(ctx context.Context, uri, database string) (*MongoFactory, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	err = cache.RetryWithBackoff(ctx, cache.DefaultBackoff, func() error {
		return retryableNet(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if database == "" {
		database = "trigen"
	}
	return &MongoFactory{client: client, coll: client.Database(database).Collection("certificates")}, nil
}

// Backend implements StoreFactory.
func (*MongoFactory) Backend() string { return "mongo" }

// Open implements StoreFactory. The unique index is created on first use.
func (f *MongoFactory) Open(ctx context.Context, b bucket.Bucket) (Store, error) {
	f.indexOnce.Do(func() {
		_, f.indexErr = f.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "bucket", Value: 1}, {Key: "cert", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
	})
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	return &mongoStore{coll: f.coll, bucket: b.String()}, nil
}

// Close implements StoreFactory.
func (f *MongoFactory) Close() error {
	return f.client.Disconnect(context.Background())
}

type mongoStore struct {
	coll   *mongo.Collection
	bucket string
}

// Admit inserts the certificate; a duplicate-key error means it was seen.
func (s *mongoStore) Admit(ctx context.Context, cert canon.Certificate) (bool, error) {
	_, err := s.coll.InsertOne(ctx, certDoc{Bucket: s.bucket, Cert: string(cert)})
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *mongoStore) Len(ctx context.Context) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"bucket": s.bucket})
	return int(n), err
}

func (s *mongoStore) Close() error { return nil }

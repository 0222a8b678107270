// Package mongo is the document backed log store, one collection per
// log kind.
package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"loginsight/pkg/models"
	"loginsight/pkg/storage"
)

const (
	accessCollection = "access_logs"
	errorCollection  = "error_logs"
)

type Store struct {
	client *mongo.Client
	dbName string
}

func New(ctx context.Context, conf *Config) (*Store, error) {
	client, err := mongo.Connect(ctx, conf.Options())
	if err != nil {
		return nil, err
	}

	s := Store{client: client, dbName: conf.DBName}
	s.createCollection(ctx, accessCollection)
	s.createCollection(ctx, errorCollection)

	return &s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) AddAccessLog(ctx context.Context, entry models.AccessLogEntry) error {
	coll := s.client.Database(s.dbName).Collection(accessCollection)
	_, err := coll.InsertOne(ctx, entry)
	return err
}

func (s *Store) AddAccessLogs(ctx context.Context, entries []models.AccessLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]interface{}, len(entries))
	for i, e := range entries {
		docs[i] = e
	}
	coll := s.client.Database(s.dbName).Collection(accessCollection)
	_, err := coll.InsertMany(ctx, docs)
	return err
}

func (s *Store) AddErrorLog(ctx context.Context, entry models.ErrorLogEntry) error {
	coll := s.client.Database(s.dbName).Collection(errorCollection)
	_, err := coll.InsertOne(ctx, entry)
	return err
}

func (s *Store) AddErrorLogs(ctx context.Context, entries []models.ErrorLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]interface{}, len(entries))
	for i, e := range entries {
		docs[i] = e
	}
	coll := s.client.Database(s.dbName).Collection(errorCollection)
	_, err := coll.InsertMany(ctx, docs)
	return err
}

// AccessLogs returns access log documents within the query window,
// newest first.
func (s *Store) AccessLogs(ctx context.Context, q storage.Query) ([]models.AccessLogEntry, error) {
	coll := s.client.Database(s.dbName).Collection(accessCollection)
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(q.Cap()))

	cur, err := coll.Find(ctx, rangeFilter(q), opts)
	if err != nil {
		return nil, err
	}

	var entries []models.AccessLogEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// ErrorLogs returns error log documents within the query window,
// newest first.
func (s *Store) ErrorLogs(ctx context.Context, q storage.Query) ([]models.ErrorLogEntry, error) {
	coll := s.client.Database(s.dbName).Collection(errorCollection)
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "severity_score", Value: -1}}).
		SetLimit(int64(q.Cap()))

	cur, err := coll.Find(ctx, rangeFilter(q), opts)
	if err != nil {
		return nil, err
	}

	var entries []models.ErrorLogEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func rangeFilter(q storage.Query) bson.M {
	window := bson.M{}
	if !q.From.IsZero() {
		window["$gte"] = q.From
	}
	if !q.To.IsZero() {
		window["$lte"] = q.To
	}
	if len(window) == 0 {
		return bson.M{}
	}
	return bson.M{"timestamp": window}
}

// createCollection creates a collection with the given name in the database if it doesn't already exist.
func (s *Store) createCollection(ctx context.Context, collName string) error {
	collExists, err := collectionExists(ctx, s.client.Database(s.dbName), collName)
	if err != nil {
		return err
	}

	if !collExists {
		err := s.client.Database(s.dbName).CreateCollection(ctx, collName)
		if err != nil {
			return err
		}
	}

	return nil
}

// collectionExists checks if a collection with the given name exists in the database.
func collectionExists(ctx context.Context, db *mongo.Database, collName string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return false, err
	}

	for _, name := range names {
		if name == collName {
			return true, nil
		}
	}

	return false, nil
}

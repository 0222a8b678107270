package mongo

import (
	"context"

	"loginsight/pkg/storage"
)

var MongoTestConf = &Config{
	Host:   "localhost",
	Port:   "27018",
	DBName: "loginsight_test",
}

// StorageConnect establishes a connection to the predefined test Mongo
// instance. Test helper.
func StorageConnect(ctx context.Context) (*Store, error) {
	db, err := New(ctx, MongoTestConf)
	if err != nil {
		return nil, storage.ErrConnectDB
	}

	if err := db.Ping(ctx); err != nil {
		return nil, storage.ErrDBNotResponding
	}

	return db, nil
}

// RestoreDB drops both log collections to reset the database state.
// WARNING: Use only in tests to avoid data loss.
func RestoreDB(ctx context.Context, db *Store) error {
	for _, name := range []string{accessCollection, errorCollection} {
		coll := db.client.Database(db.dbName).Collection(name)
		if err := coll.Drop(ctx); err != nil {
			return err
		}
	}
	return nil
}

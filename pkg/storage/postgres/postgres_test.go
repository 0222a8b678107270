package postgres

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"loginsight/pkg/storage"
	"loginsight/pkg/storage/memdb"
)

const testLogsPath = "../../../test_data/log_examples.json"

func TestMain(m *testing.M) {
	log.SetLevel(log.PanicLevel)
	exitCode := m.Run()
	os.Exit(exitCode)
}

func storageConnect(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("POSTGRES_HOST") == "" {
		t.Skip("POSTGRES_HOST not set, skipping postgres integration test")
	}

	conf, err := NewConfig()
	if err != nil {
		t.Fatal(err)
	}

	db, err := New(context.Background(), conf.ConString())
	if err != nil {
		t.Fatal(storage.ErrConnectDB)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Fatal(storage.ErrDBNotResponding)
	}

	return db
}

// truncateLogs restores the original state of DB for further testing.
func truncateLogs(db *Store) error {
	_, err := db.db.Exec(context.Background(), "TRUNCATE TABLE access_logs, error_logs")
	return err
}

func TestStore_AddAccessLogs(t *testing.T) {
	db := storageConnect(t)

	t.Cleanup(func() {
		if err := truncateLogs(db); err != nil {
			t.Errorf("unexpected error clearing log tables: %v", err)
		}
		db.Close(context.Background())
	})

	access, _, err := memdb.LoadTestLogs(testLogsPath)
	if err != nil {
		t.Fatal(err)
	}

	if err := db.AddAccessLogs(context.Background(), access); err != nil {
		t.Fatalf("unexpected error while adding access logs: %v", err)
	}

	got, err := db.AccessLogs(context.Background(), storage.Query{})
	if err != nil {
		t.Fatalf("unexpected error while fetching access logs: %v", err)
	}
	if len(got) != len(access) {
		t.Errorf("want %d access logs, got %d", len(access), len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Errorf("entries not in descending timestamp order at index %d", i)
		}
	}
}

func TestStore_ErrorLogsWindow(t *testing.T) {
	db := storageConnect(t)

	t.Cleanup(func() {
		if err := truncateLogs(db); err != nil {
			t.Errorf("unexpected error clearing log tables: %v", err)
		}
		db.Close(context.Background())
	})

	_, errLogs, err := memdb.LoadTestLogs(testLogsPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AddErrorLogs(context.Background(), errLogs); err != nil {
		t.Fatalf("unexpected error while adding error logs: %v", err)
	}

	from := time.Date(2024, 3, 15, 10, 5, 0, 0, time.UTC)
	got, err := db.ErrorLogs(context.Background(), storage.Query{From: from})
	if err != nil {
		t.Fatalf("unexpected error while fetching error logs: %v", err)
	}
	for _, e := range got {
		if e.Timestamp.Before(from) {
			t.Errorf("entry %v is before the window start %v", e.Timestamp, from)
		}
	}
}

func Test_rangeClause(t *testing.T) {
	from := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		q         storage.Query
		whereWant string
		argsWant  int
	}{
		{name: "open range", q: storage.Query{}, whereWant: "", argsWant: 0},
		{name: "from only", q: storage.Query{From: from}, whereWant: "WHERE timestamp >= $1", argsWant: 1},
		{name: "to only", q: storage.Query{To: to}, whereWant: "WHERE timestamp <= $1", argsWant: 1},
		{name: "closed range", q: storage.Query{From: from, To: to}, whereWant: "WHERE timestamp >= $1 AND timestamp <= $2", argsWant: 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			where, args := rangeClause(tc.q)
			if !strings.EqualFold(where, tc.whereWant) {
				t.Errorf("want where clause %q, got %q", tc.whereWant, where)
			}
			if len(args) != tc.argsWant {
				t.Errorf("want %d args, got %d", tc.argsWant, len(args))
			}
		})
	}
}

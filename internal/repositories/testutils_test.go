package repositories_test

import (
	_ "embed"
	"testing"

	"github.com/myrjola/cropdoc/internal/db"
)

//go:embed testdata/fixtures.sql
var testFixtures string

// newTestDB creates a new in-memory database for testing purposes.
func newTestDB(t *testing.T) *db.Database {
	var (
		dbs *db.Database
		err error
	)

	if dbs, err = db.NewDB(":memory:"); err != nil {
		t.Fatal(err)
	}

	// Add test data
	if _, err = dbs.ReadWrite.Exec(testFixtures); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err = dbs.Close(); err != nil {
			t.Fatal(err)
		}
	})

	return dbs
}

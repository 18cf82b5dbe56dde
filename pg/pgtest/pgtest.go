// Package pgtest provides utilities for creating and destroying test databases
// in PostgreSQL. It's used by the pg store tests and the e2e tests. The code
// is based on chain's pgtest package.
package pgtest

import (
	"context"
	"database/sql"
	"math/rand"
	"net/url"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/freedome/freedome/errors"
	"github.com/lib/pq"
)

var (
	// DefaultURL is the default URL used for accessing the postgres server in
	// open(). PGTEST_URL overrides it.
	DefaultURL = "postgres://localhost/postgres?sslmode=disable"

	random = rand.New(rand.NewSource(time.Now().UnixNano()))
	gcDur  = 3 * time.Minute

	// DefaultSchema is a SQL query that's executed when a new database is
	// created in NewDB. You can put SQL in here that you want to be executed
	// before every test.
	DefaultSchema = `
		SET TIME ZONE 'UTC';
	`
)

// NewDB creates a connection to a fresh PostgreSQL database for testing.
//
// Don't worry about closing the DB. It will close on its own when garbage collected.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()

	db, _ := NewDBURL(t)
	return db
}

// NewDBURL is like NewDB but also returns the new database's connection
// string, for code that opens its own connections such as LISTEN clients.
func NewDBURL(t testing.TB) (*sql.DB, string) {
	t.Helper()

	runtime.GC() // give the finalizers a chance to run

	db, dbURL, err := open(context.Background(), "", DefaultSchema)
	if err != nil {
		t.Fatal(err)
	}
	runtime.SetFinalizer(db, (*sql.DB).Close)

	return db, dbURL
}

func open(ctx context.Context, baseURL, schema string) (*sql.DB, string, error) {
	const op errors.Op = "pgtest.open"

	if baseURL == "" {
		baseURL = DefaultURL
		if env := os.Getenv("PGTEST_URL"); env != "" {
			baseURL = env
		}
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, "", err
	}

	ctldb, err := sql.Open("postgres", baseURL)
	if err != nil {
		return nil, "", errors.E(op, err)
	}
	defer ctldb.Close()

	if err = gcdbs(ctldb); err != nil {
		return nil, "", err
	}

	dbname := pickName("db")
	u.Path = "/" + dbname
	_, err = ctldb.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbname))
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open("postgres", u.String())
	if err != nil {
		return nil, "", errors.E(op, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, "", err
	}

	return db, u.String(), nil
}

func pickName(prefix string) (s string) {
	const chars = "abcdefghijklmnopqrstuvwxyz"
	for i := 0; i < 10; i++ {
		s += string(chars[random.Intn(len(chars))])
	}
	return formatPrefix(prefix, time.Now()) + s
}

func formatPrefix(prefix string, t time.Time) string {
	return "pgtest_" + prefix + "_" + t.UTC().Format("20060102150405") + "Z_"
}

func gcdbs(db *sql.DB) error {
	gcTime := time.Now().Add(-gcDur)
	const q = `
		SELECT datname FROM pg_database
		WHERE datname LIKE 'pgtest_%' AND datname < $1`
	rows, err := db.Query(q, formatPrefix("db", gcTime))
	if err != nil {
		return err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		err = rows.Scan(&name)
		if err != nil {
			return err
		}
		names = append(names, name)
	}
	if rows.Err() != nil {
		return rows.Err()
	}
	for i, name := range names {
		if i > 5 {
			break // drop up to five per test
		}
		go db.Exec("DROP DATABASE " + pq.QuoteIdentifier(name))
	}
	return nil
}

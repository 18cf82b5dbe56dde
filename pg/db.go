// Package pg stores freedome's records in PostgreSQL. It's the alternative to
// the firestore package for self-hosted deployments and the backend used by
// the e2e tests.
package pg

import (
	"context"
	"database/sql"

	"github.com/freedome/freedome/errors"
	"github.com/lib/pq"
)

// pgErr converts an error produced by lib/pq into a freedome domain error.
// All sql statements in package pg should return errors wrapped by pgErr.
func pgErr(err error) error {
	if err == sql.ErrNoRows {
		return errors.E(errors.NotExist)
	}

	e, ok := err.(*pq.Error)
	if !ok {
		return err
	}

	switch e.Code.Name() {
	case "unique_violation":
		return errors.E(errors.Exist, e.Message)
	case "foreign_key_violation":
		return errors.E(errors.NotExist, "business does not exist")
	case "invalid_text_representation":
		// a malformed uuid can't name a row
		return errors.E(errors.NotExist)
	case "query_canceled":
		return errors.E(context.Canceled)
	default:
		return e
	}
}

// Init creates the schema for every store. Tables are created in dependency
// order.
func Init(ctx context.Context, db *sql.DB) error {
	inits := []func(context.Context) error{
		(&UserStore{DB: db}).Init,
		(&OfferStore{DB: db}).Init,
		(&EventStore{DB: db}).Init,
		(&ReviewStore{DB: db}).Init,
		(&NotificationStore{DB: db}).Init,
	}
	for _, init := range inits {
		if err := init(ctx); err != nil {
			return err
		}
	}
	return nil
}

// withTx runs fn in a transaction, committing if it returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return pgErr(err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return pgErr(tx.Commit())
}

package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	"github.com/google/uuid"
)

// ReviewStore stores reviews in a PostgreSQL database.
type ReviewStore struct {
	DB *sql.DB
}

// Init sets up the database schema and creates indices.
func (s *ReviewStore) Init(ctx context.Context) error {
	const op errors.Op = "ReviewStore.Init"

	_, err := s.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS reviews (
		sequence     SERIAL        NOT NULL,
		id           UUID          PRIMARY KEY,
		business_id  TEXT          NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		author_id    TEXT          NOT NULL,
		author_name  TEXT          NOT NULL DEFAULT '',
		rating       SMALLINT      NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment      TEXT          NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ   NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS reviews_business_idx ON reviews (business_id, created_at DESC);
	`)
	if err != nil {
		return errors.E(op, pgErr(err))
	}

	return nil
}

// Create inserts a new review and assigns it an ID.
func (s *ReviewStore) Create(ctx context.Context, r freedome.Review) (freedome.Review, error) {
	const op errors.Op = "ReviewStore.Create"

	r.ID = freedome.ReviewID(uuid.NewString())
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO reviews (id, business_id, author_id, author_name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.BusinessID, r.AuthorID, r.AuthorName, r.Rating, r.Comment, r.CreatedAt)
	if err != nil {
		return r, errors.E(op, pgErr(err))
	}
	r.CreatedAt = r.CreatedAt.UTC()

	return r, nil
}

// ListForBusiness lists a business's reviews, newest first.
func (s *ReviewStore) ListForBusiness(ctx context.Context, id freedome.BusinessID) ([]freedome.Review, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, business_id, author_id, author_name, rating, comment, created_at
		FROM reviews
		WHERE business_id = $1
		ORDER BY created_at DESC, sequence DESC`, id)
	if err != nil {
		return nil, pgErr(err)
	}
	defer rows.Close()

	reviews := []freedome.Review{}
	for rows.Next() {
		var r freedome.Review
		err := rows.Scan(&r.ID, &r.BusinessID, &r.AuthorID, &r.AuthorName, &r.Rating, &r.Comment, &r.CreatedAt)
		if err != nil {
			return nil, pgErr(err)
		}
		r.CreatedAt = r.CreatedAt.UTC()
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr(err)
	}

	return reviews, nil
}

// DeleteByBusiness removes every review of a business.
func (s *ReviewStore) DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM reviews WHERE business_id = $1`, id)
	return pgErr(err)
}

package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	"github.com/google/uuid"
)

// OfferStore stores offers in a PostgreSQL database.
type OfferStore struct {
	DB *sql.DB
}

// Init sets up the database schema and creates indices.
func (s *OfferStore) Init(ctx context.Context) error {
	const op errors.Op = "OfferStore.Init"

	_, err := s.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS offers (
		sequence     SERIAL        NOT NULL,
		id           UUID          PRIMARY KEY,
		business_id  TEXT          NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		title        TEXT          NOT NULL,
		description  TEXT          NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ   NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS offers_business_idx ON offers (business_id);
	`)
	if err != nil {
		return errors.E(op, pgErr(err))
	}

	return nil
}

// Create inserts a new offer and assigns it an ID.
func (s *OfferStore) Create(ctx context.Context, offer freedome.Offer) (freedome.Offer, error) {
	const op errors.Op = "OfferStore.Create"

	offer.ID = freedome.OfferID(uuid.NewString())
	if offer.CreatedAt.IsZero() {
		offer.CreatedAt = time.Now()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO offers (id, business_id, title, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		offer.ID, offer.BusinessID, offer.Title, offer.Description, offer.CreatedAt)
	if err != nil {
		return offer, errors.E(op, pgErr(err))
	}
	offer.CreatedAt = offer.CreatedAt.UTC()

	return offer, nil
}

// List lists every offer, newest first.
func (s *OfferStore) List(ctx context.Context) ([]freedome.Offer, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, business_id, title, description, created_at
		FROM offers
		ORDER BY created_at DESC, sequence DESC`)
	if err != nil {
		return nil, pgErr(err)
	}
	defer rows.Close()

	offers := []freedome.Offer{}
	for rows.Next() {
		var o freedome.Offer
		if err := rows.Scan(&o.ID, &o.BusinessID, &o.Title, &o.Description, &o.CreatedAt); err != nil {
			return nil, pgErr(err)
		}
		o.CreatedAt = o.CreatedAt.UTC()
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr(err)
	}

	return offers, nil
}

// DeleteByBusiness removes every offer of a business.
func (s *OfferStore) DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM offers WHERE business_id = $1`, id)
	return pgErr(err)
}

package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EventStore stores events and their attendee lists in a PostgreSQL database.
type EventStore struct {
	DB *sql.DB
}

// Init sets up the database schema and creates indices.
func (s *EventStore) Init(ctx context.Context) error {
	const op errors.Op = "EventStore.Init"

	_, err := s.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS events (
		sequence     SERIAL        NOT NULL,
		id           UUID          PRIMARY KEY,
		business_id  TEXT          NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		title        TEXT          NOT NULL,
		description  TEXT          NOT NULL DEFAULT '',
		date         TEXT          NOT NULL,
		start_time   TEXT          NOT NULL,
		end_time     TEXT          NOT NULL,
		attendees    TEXT[]        NOT NULL DEFAULT '{}',
		created_at   TIMESTAMPTZ   NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS events_business_idx ON events (business_id);
	`)
	if err != nil {
		return errors.E(op, pgErr(err))
	}

	return nil
}

const eventColumns = `id, business_id, title, description, date, start_time, end_time, attendees, created_at`

func scanEvent(row scanner) (freedome.Event, error) {
	var (
		e         freedome.Event
		attendees []string
	)
	err := row.Scan(
		&e.ID,
		&e.BusinessID,
		&e.Title,
		&e.Description,
		&e.Date,
		&e.StartTime,
		&e.EndTime,
		pq.Array(&attendees),
		&e.CreatedAt,
	)
	if err != nil {
		return e, pgErr(err)
	}

	e.Attendees = make([]freedome.UserID, len(attendees))
	for i, a := range attendees {
		e.Attendees[i] = freedome.UserID(a)
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

// Create inserts a new event and assigns it an ID.
func (s *EventStore) Create(ctx context.Context, event freedome.Event) (freedome.Event, error) {
	const op errors.Op = "EventStore.Create"

	event.ID = freedome.EventID(uuid.NewString())
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	attendees := make([]string, len(event.Attendees))
	for i, a := range event.Attendees {
		attendees[i] = string(a)
	}

	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO events (id, business_id, title, description, date, start_time, end_time, attendees, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+eventColumns,
		event.ID,
		event.BusinessID,
		event.Title,
		event.Description,
		event.Date,
		event.StartTime,
		event.EndTime,
		pq.Array(attendees),
		event.CreatedAt)
	created, err := scanEvent(row)
	if err != nil {
		return event, errors.E(op, err)
	}

	return created, nil
}

// Get retrieves an Event by ID.
func (s *EventStore) Get(ctx context.Context, id freedome.EventID) (freedome.Event, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

// List lists every event, newest first.
func (s *EventStore) List(ctx context.Context) ([]freedome.Event, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		ORDER BY created_at DESC, sequence DESC`)
	if err != nil {
		return nil, pgErr(err)
	}
	defer rows.Close()

	events := []freedome.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr(err)
	}

	return events, nil
}

// SetAttendance adds user to or removes user from the attendee list in a
// single statement. Other attendees are untouched.
func (s *EventStore) SetAttendance(ctx context.Context, id freedome.EventID, user freedome.UserID, attending bool) (freedome.Event, error) {
	row := s.DB.QueryRowContext(ctx, `
		UPDATE events SET attendees = CASE
			WHEN NOT $3 THEN array_remove(attendees, $2::text)
			WHEN $2::text = ANY(attendees) THEN attendees
			ELSE array_append(attendees, $2::text)
		END
		WHERE id = $1
		RETURNING `+eventColumns,
		id, user, attending)
	return scanEvent(row)
}

// DeleteByBusiness removes every event of a business.
func (s *EventStore) DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM events WHERE business_id = $1`, id)
	return pgErr(err)
}

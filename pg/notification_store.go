package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	"github.com/freedome/freedome/log"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// notifyChannel is the LISTEN/NOTIFY channel that carries the id of a
// business whose notifications changed.
const notifyChannel = "notifications_changed"

// NotificationStore stores business notifications in a PostgreSQL database.
// Subscribers are woken by a trigger through LISTEN/NOTIFY.
type NotificationStore struct {
	DB *sql.DB

	// URL is the connection string used to open listener connections. It's
	// only needed by Subscribe.
	URL string
}

// Init sets up the database schema, indices and the change trigger.
func (s *NotificationStore) Init(ctx context.Context) error {
	const op errors.Op = "NotificationStore.Init"

	_, err := s.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS notifications (
		sequence      SERIAL        NOT NULL,
		id            UUID          PRIMARY KEY,
		business_id   TEXT          NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		type          TEXT          NOT NULL,
		from_user_id  TEXT          NOT NULL DEFAULT '',
		read          BOOLEAN       NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ   NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS notifications_business_idx ON notifications (business_id, created_at DESC);

	CREATE OR REPLACE FUNCTION f_notifications_changed()
	RETURNS trigger AS $$
	BEGIN
		IF TG_OP = 'DELETE' THEN
			PERFORM pg_notify('` + notifyChannel + `', OLD.business_id);
		ELSE
			PERFORM pg_notify('` + notifyChannel + `', NEW.business_id);
		END IF;
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql;

	DROP TRIGGER IF EXISTS notifications_changed ON notifications;
	CREATE TRIGGER notifications_changed
	AFTER INSERT OR UPDATE OR DELETE ON notifications
	FOR EACH ROW EXECUTE PROCEDURE f_notifications_changed();
	`)
	if err != nil {
		return errors.E(op, pgErr(err))
	}

	return nil
}

const notificationColumns = `id, business_id, type, from_user_id, read, created_at`

func scanNotification(row scanner) (freedome.Notification, error) {
	var n freedome.Notification
	err := row.Scan(&n.ID, &n.BusinessID, &n.Type, &n.FromUserID, &n.Read, &n.CreatedAt)
	if err != nil {
		return n, pgErr(err)
	}
	n.CreatedAt = n.CreatedAt.UTC()
	return n, nil
}

// Create inserts a new notification and assigns it an ID.
func (s *NotificationStore) Create(ctx context.Context, n freedome.Notification) (freedome.Notification, error) {
	const op errors.Op = "NotificationStore.Create"

	n.ID = freedome.NotificationID(uuid.NewString())
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Type == "" {
		n.Type = freedome.NotifyGeneric
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO notifications (id, business_id, type, from_user_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.BusinessID, n.Type, n.FromUserID, n.Read, n.CreatedAt)
	if err != nil {
		return n, errors.E(op, pgErr(err))
	}
	n.CreatedAt = n.CreatedAt.UTC()

	return n, nil
}

// Get retrieves a Notification by ID.
func (s *NotificationStore) Get(ctx context.Context, id freedome.NotificationID) (freedome.Notification, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	return scanNotification(row)
}

// ListForBusiness lists a business's notifications, newest first.
func (s *NotificationStore) ListForBusiness(ctx context.Context, id freedome.BusinessID) ([]freedome.Notification, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE business_id = $1
		ORDER BY created_at DESC, sequence DESC`, id)
	if err != nil {
		return nil, pgErr(err)
	}
	defer rows.Close()

	list := []freedome.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr(err)
	}

	return list, nil
}

// MarkRead sets a notification's read flag.
func (s *NotificationStore) MarkRead(ctx context.Context, id freedome.NotificationID) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1 AND NOT read`, id)
	if err != nil {
		return pgErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either missing or already read
		_, err := s.Get(ctx, id)
		return err
	}
	return nil
}

// DeleteByBusiness removes every notification of a business.
func (s *NotificationStore) DeleteByBusiness(ctx context.Context, id freedome.BusinessID) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM notifications WHERE business_id = $1`, id)
	return pgErr(err)
}

// Subscribe sends the business's notification list to fn now and after every
// change. It holds a dedicated listener connection until ctx is done.
func (s *NotificationStore) Subscribe(ctx context.Context, id freedome.BusinessID, fn func([]freedome.Notification)) error {
	const op errors.Op = "NotificationStore.Subscribe"

	logger := log.FromContext(ctx)

	if s.URL == "" {
		return errors.E(op, errors.Internal, "no listener URL configured")
	}

	listener := pq.NewListener(s.URL, 100*time.Millisecond, 10*time.Second, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("notification listener", zap.Error(err))
		}
	})
	defer listener.Close()

	if err := listener.Listen(notifyChannel); err != nil {
		return errors.E(op, pgErr(err))
	}

	push := func() error {
		list, err := s.ListForBusiness(ctx, id)
		if err != nil {
			return err
		}
		fn(list)
		return nil
	}

	// Listen before the first read so no change falls in between
	if err := push(); err != nil {
		return errors.E(op, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case n := <-listener.Notify:
			// nil means the connection was re-established and
			// changes may have been missed
			if n != nil && n.Extra != string(id) {
				continue
			}
			if err := push(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return errors.E(op, err)
			}

		case <-time.After(90 * time.Second):
			go listener.Ping()
		}
	}
}

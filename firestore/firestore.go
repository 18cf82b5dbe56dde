// Package firestore stores freedome's records in Cloud Firestore, the document
// store the web client was originally built on.
//
// Documents written by older clients come in a few shapes. They're decoded
// here, once, into the canonical types of package freedome, and only the
// canonical shape is ever written back.
package firestore

import (
	"context"
	"sort"
	"time"

	fs "cloud.google.com/go/firestore"
	"github.com/freedome/freedome/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names.
const (
	Users         = "users"
	Offers        = "offers"
	Events        = "events"
	Reviews       = "reviews"
	Notifications = "notifications"
)

// fsErr converts an error produced by the Firestore client into a freedome
// domain error. All calls in package firestore should return errors wrapped by
// fsErr.
func fsErr(err error) error {
	if err == nil {
		return nil
	}

	switch status.Code(err) {
	case codes.NotFound:
		return errors.E(errors.NotExist)
	case codes.AlreadyExists:
		return errors.E(errors.Exist)
	case codes.InvalidArgument:
		return errors.E(errors.Invalid, err)
	case codes.Canceled:
		return errors.E(context.Canceled)
	default:
		return err
	}
}

// docs collects every document of a query.
func docs(ctx context.Context, q fs.Query) ([]*fs.DocumentSnapshot, error) {
	it := q.Documents(ctx)
	defer it.Stop()

	var out []*fs.DocumentSnapshot
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, fsErr(err)
		}
		out = append(out, snap)
	}
}

// deleteWhere deletes every document of collection whose field equals value.
func deleteWhere(ctx context.Context, client *fs.Client, collection, field string, value interface{}) error {
	snaps, err := docs(ctx, client.Collection(collection).Where(field, "==", value))
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return nil
	}

	bw := client.BulkWriter(ctx)
	jobs := make([]*fs.BulkWriterJob, 0, len(snaps))
	for _, snap := range snaps {
		job, err := bw.Delete(snap.Ref)
		if err != nil {
			bw.End()
			return fsErr(err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil && status.Code(err) != codes.NotFound {
			return fsErr(err)
		}
	}
	return nil
}

// newestFirst sorts by creation time, descending. Ties keep query order.
func newestFirst[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).After(created(items[j]))
	})
}

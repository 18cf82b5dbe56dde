package pg

import (
	"context"
	"testing"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	"github.com/go-test/deep"
)

func TestOfferStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	users := &UserStore{DB: db}
	store := &OfferStore{DB: db}

	_, err := store.Create(ctx, freedome.Offer{BusinessID: "ghost", Title: "orphan"})
	if !errors.Is(errors.NotExist, err) {
		t.Fatalf("orphan offer error=%v", err)
	}

	createBusiness(t, users, "b1", time.Now())
	createBusiness(t, users, "b2", time.Now())

	base := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	first, err := store.Create(ctx, freedome.Offer{BusinessID: "b1", Title: "first", CreatedAt: base})
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Create(ctx, freedome.Offer{BusinessID: "b2", Title: "second", Description: "δωρεάν", CreatedAt: base.Add(time.Minute)})
	if err != nil {
		t.Fatal(err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(list, []freedome.Offer{second, first}); diff != nil {
		t.Error(diff)
	}

	if err := store.DeleteByBusiness(ctx, "b2"); err != nil {
		t.Fatal(err)
	}
	list, _ = store.List(ctx)
	if diff := deep.Equal(list, []freedome.Offer{first}); diff != nil {
		t.Error(diff)
	}

	// Deleting the business takes its offers with it
	if err := users.Delete(ctx, "b1"); err != nil {
		t.Fatal(err)
	}
	if list, _ = store.List(ctx); len(list) != 0 {
		t.Errorf("offers left after business delete: %+v", list)
	}
}

func TestEventAttendance(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	users := &UserStore{DB: db}
	store := &EventStore{DB: db}

	createBusiness(t, users, "b1", time.Now())

	event, err := store.Create(ctx, freedome.Event{
		BusinessID: "b1",
		Title:      "Jazz",
		Date:       "2024-06-01",
		StartTime:  "20:00",
		EndTime:    "23:00",
		Attendees:  []freedome.UserID{},
		CreatedAt:  time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		user      freedome.UserID
		attending bool
		want      []freedome.UserID
	}{
		{"u1", true, []freedome.UserID{"u1"}},
		{"u2", true, []freedome.UserID{"u1", "u2"}},
		{"u1", true, []freedome.UserID{"u1", "u2"}},
		{"u1", false, []freedome.UserID{"u2"}},
		{"u1", false, []freedome.UserID{"u2"}},
	}
	for i, step := range steps {
		got, err := store.SetAttendance(ctx, event.ID, step.user, step.attending)
		if err != nil {
			t.Fatal(err)
		}
		if diff := deep.Equal(got.Attendees, step.want); diff != nil {
			t.Errorf("step %d: %v", i, diff)
		}
	}

	got, err := store.Get(ctx, event.ID)
	if err != nil {
		t.Fatal(err)
	}
	event.Attendees = []freedome.UserID{"u2"}
	if diff := deep.Equal(got, event); diff != nil {
		t.Error(diff)
	}

	_, err = store.SetAttendance(ctx, "not-a-uuid", "u1", true)
	if !errors.Is(errors.NotExist, err) {
		t.Errorf("missing event error=%v", err)
	}
}

func TestReviewStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	users := &UserStore{DB: db}
	store := &ReviewStore{DB: db}

	createBusiness(t, users, "b1", time.Now())
	createBusiness(t, users, "b2", time.Now())

	base := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	var want []freedome.Review
	for i, rating := range []int{3, 5} {
		r, err := store.Create(ctx, freedome.Review{
			BusinessID: "b1",
			AuthorID:   "c1",
			AuthorName: "Ελένη",
			Rating:     rating,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
		want = append([]freedome.Review{r}, want...)
	}
	if _, err := store.Create(ctx, freedome.Review{BusinessID: "b2", AuthorID: "c1", Rating: 1}); err != nil {
		t.Fatal(err)
	}

	got, err := store.ListForBusiness(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}

	if err := store.DeleteByBusiness(ctx, "b1"); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.ListForBusiness(ctx, "b1"); len(got) != 0 {
		t.Errorf("reviews left: %+v", got)
	}
	if got, _ := store.ListForBusiness(ctx, "b2"); len(got) != 1 {
		t.Errorf("other business lost reviews: %+v", got)
	}
}

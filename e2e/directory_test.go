package e2e

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
)

func TestSearch(t *testing.T) {
	t.Parallel()

	srv := stubServer(t)
	ctx := context.Background()

	signUpBusiness(t, srv, "b1", "Ο Μάγειρας", "Εστιατόριο", "Αθήνα")
	signUpBusiness(t, srv, "b2", "Καφέ Πλατεία", "Καφετέρια", "Πάτρα")
	visitor := signUpClient(t, srv, "u1")

	tests := []struct {
		req  freedome.BusinessSearchRequest
		want []freedome.UserID
	}{
		{freedome.BusinessSearchRequest{}, []freedome.UserID{"b2", "b1"}},
		{freedome.BusinessSearchRequest{Category: "εστιατ"}, []freedome.UserID{"b1"}},
		{freedome.BusinessSearchRequest{Location: "πατρα"}, []freedome.UserID{"b2"}},
		{freedome.BusinessSearchRequest{Keyword: "ΚΑΦΈ"}, []freedome.UserID{"b2", "b1"}},
		{freedome.BusinessSearchRequest{Near: &athens, RadiusKM: 20}, []freedome.UserID{"b1"}},
	}

	for _, test := range tests {
		got, err := visitor.Businesses.Search(ctx, test.req)
		if err != nil {
			t.Fatal(err)
		}
		var ids []freedome.UserID
		for _, b := range got {
			ids = append(ids, b.ID)
			if b.Email != "" {
				t.Errorf("search result %s exposes email", b.ID)
			}
		}
		if !equalIDs(ids, test.want) {
			t.Errorf("Search(%+v) = %v, want %v", test.req, ids, test.want)
		}
	}

	fc, err := visitor.Businesses.Map(ctx, freedome.BusinessSearchRequest{Near: &athens})
	if err != nil {
		t.Fatal(err)
	}
	// One point for b1 and the radius circle. b2 was never geocoded.
	if len(fc.Features) != 2 {
		t.Errorf("map features = %d, want 2", len(fc.Features))
	}
}

func equalIDs(a, b []freedome.UserID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListingsAndNotifications(t *testing.T) {
	t.Parallel()

	srv := stubServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	business := signUpBusiness(t, srv, "b1", "Ο Μάγειρας", "Εστιατόριο", "Αθήνα")
	signUpBusiness(t, srv, "b2", "Καφέ Πλατεία", "Καφετέρια", "Πάτρα")
	visitor := signUpClient(t, srv, "u1")

	// The business watches its notification bell
	updates := make(chan []freedome.Notification, 10)
	streamCtx, stopStream := context.WithCancel(ctx)
	defer stopStream()
	streamDone := make(chan error, 1)
	go func() {
		streamDone <- business.Notifications.Stream(streamCtx, func(list []freedome.Notification) {
			updates <- list
		})
	}()
	if list := <-updates; len(list) != 0 {
		t.Fatalf("initial notifications = %v", list)
	}

	if _, err := visitor.Offers.Create(ctx, freedome.Offer{Title: "nope"}); !errors.Is(errors.Permission, err) {
		t.Fatalf("client Offers.Create got %v, want %v", err, errors.Permission)
	}

	offer, err := business.Offers.Create(ctx, freedome.Offer{Title: "2 για 1", BusinessID: "b2"})
	if err != nil {
		t.Fatal(err)
	}
	if offer.BusinessID != "b1" {
		t.Errorf("offer.BusinessID = %q, want b1", offer.BusinessID)
	}

	event, err := business.Events.Create(ctx, freedome.Event{
		Title:     "Βραδιά τζαζ",
		Date:      "2024-06-01",
		StartTime: "20:00",
		EndTime:   "23:00",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Favorites come first in listings
	if _, err := visitor.Favorites.Set(ctx, "b1", freedome.Favorite{Tags: []string{"φαγητό"}}); err != nil {
		t.Fatal(err)
	}
	waitForNotification(t, updates, freedome.NotifyFavorite)

	favs, err := visitor.Favorites.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(favs) != 1 || favs[0].BusinessID != "b1" || favs[0].Business == nil {
		t.Errorf("Favorites.List() = %+v", favs)
	}

	offers, err := visitor.Offers.List(ctx, freedome.ListingRequest{Category: "εστιατ"})
	if err != nil {
		t.Fatal(err)
	}
	if len(offers) != 1 || offers[0].ID != offer.ID || offers[0].Business == nil {
		t.Errorf("Offers.List() = %+v", offers)
	}

	reply, err := visitor.Events.RSVP(ctx, string(event.ID), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reply.Attending {
		t.Error("RSVP toggle didn't add the attendee")
	}
	waitForNotification(t, updates, freedome.NotifyRSVP)

	review, err := visitor.Businesses.Review(ctx, "b1", freedome.ReviewCreateRequest{Rating: 4, Comment: "Πολύ καλό"})
	if err != nil {
		t.Fatal(err)
	}
	if review.AuthorName != "Ελένη Γεωργίου" {
		t.Errorf("review author = %q", review.AuthorName)
	}
	list := waitForNotification(t, updates, freedome.NotifyReview)

	detail, err := visitor.Businesses.Get(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if detail.Rating.Count != 1 || detail.Rating.Stars.Full != 4 {
		t.Errorf("rating = %+v", detail.Rating)
	}
	if len(detail.Offers) != 1 || len(detail.Events) != 1 {
		t.Errorf("detail has %d offers and %d events", len(detail.Offers), len(detail.Events))
	}

	if err := visitor.Notifications.MarkRead(ctx, string(list[0].ID)); !errors.Is(errors.Permission, err) {
		t.Errorf("client MarkRead got %v, want %v", err, errors.Permission)
	}
	if err := business.Notifications.MarkRead(ctx, string(list[0].ID)); err != nil {
		t.Fatal(err)
	}

	stopStream()
	if err := <-streamDone; err != nil {
		t.Errorf("Stream() = %v", err)
	}
}

// waitForNotification waits for a list whose newest notification has typ.
func waitForNotification(t *testing.T, updates <-chan []freedome.Notification, typ freedome.NotificationType) []freedome.Notification {
	t.Helper()

	timeout := time.After(10 * time.Second)
	for {
		select {
		case list := <-updates:
			if len(list) > 0 && list[0].Type == typ {
				return list
			}
		case <-timeout:
			t.Fatalf("no %s notification", typ)
			return nil
		}
	}
}

func TestLogoUpload(t *testing.T) {
	t.Parallel()

	srv := stubServer(t)
	ctx := context.Background()

	business := signUpBusiness(t, srv, "b1", "Ο Μάγειρας", "Εστιατόριο", "Αθήνα")

	reply, err := business.Uploads.Logo(ctx, "logo.PNG", bytes.NewReader([]byte("\x89PNG")))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(reply.URL, "https://storage.example/logos/b1/") {
		t.Errorf("logo url = %q", reply.URL)
	}

	user, err := business.Users.Get(ctx, "me")
	if err != nil {
		t.Fatal(err)
	}
	if user.Business.LogoURL != reply.URL {
		t.Errorf("profile logo = %q, want %q", user.Business.LogoURL, reply.URL)
	}

	_, err = business.Uploads.Logo(ctx, "logo.gif", bytes.NewReader([]byte("GIF89a")))
	if !errors.Is(errors.Invalid, err) {
		t.Errorf("gif upload got %v, want %v", err, errors.Invalid)
	}
}

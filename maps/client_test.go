package maps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	"github.com/go-test/deep"
	gmaps "googlemaps.github.io/maps"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient("test-key", 1000, gmaps.WithBaseURL(srv.URL), gmaps.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestGeocode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/geocode/json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if got, want := q.Get("key"), "test-key"; got != want {
			t.Errorf("key = %q, want %q", got, want)
		}
		if got, want := q.Get("region"), "gr"; got != want {
			t.Errorf("region = %q, want %q", got, want)
		}

		switch q.Get("address") {
		case "Αθήνα":
			fmt.Fprint(w, `{"status":"OK","results":[{"formatted_address":"Athens, Greece","geometry":{"location":{"lat":37.9838,"lng":23.7275}}}]}`)
		case "nowhere":
			fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
		default:
			fmt.Fprint(w, `{"status":"REQUEST_DENIED","error_message":"bad key"}`)
		}
	})
	ctx := context.Background()

	got, err := c.Geocode(ctx, "Αθήνα")
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(got, freedome.Coordinates{Lat: 37.9838, Lng: 23.7275}); diff != nil {
		t.Error(diff)
	}

	_, err = c.Geocode(ctx, "nowhere")
	if got, want := err, errors.E(errors.NotExist); !errors.Match(want, got) {
		t.Errorf("Geocode(nowhere) error=%v, want %v", got, want)
	}

	_, err = c.Geocode(ctx, "denied")
	if got, want := err, errors.E(errors.Internal); !errors.Match(want, got) {
		t.Errorf("Geocode(denied) error=%v, want %v", got, want)
	}
}

func TestAutocomplete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got, want := q.Get("components"), "country:gr"; got != want {
			t.Errorf("components = %q, want %q", got, want)
		}
		if q.Get("input") == "zzz" {
			fmt.Fprint(w, `{"status":"ZERO_RESULTS","predictions":[]}`)
			return
		}
		fmt.Fprint(w, `{"status":"OK","predictions":[
			{"place_id":"p1","description":"Θεσσαλονίκη, Ελλάδα"},
			{"place_id":"p2","description":"Θεσπρωτία, Ελλάδα"}
		]}`)
	})
	ctx := context.Background()

	got, err := c.Autocomplete(ctx, "Θεσ")
	if err != nil {
		t.Fatal(err)
	}
	want := []freedome.Place{
		{PlaceID: "p1", Description: "Θεσσαλονίκη, Ελλάδα"},
		{PlaceID: "p2", Description: "Θεσπρωτία, Ελλάδα"},
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}

	got, err = c.Autocomplete(ctx, "zzz")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Autocomplete(zzz) = %v, want empty", got)
	}
}

func TestPlaceDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got, want := q.Get("fields"), "name,rating"; got != want {
			t.Errorf("fields = %q, want %q", got, want)
		}
		if q.Get("place_id") != "p1" {
			fmt.Fprint(w, `{"status":"NOT_FOUND"}`)
			return
		}
		fmt.Fprint(w, `{"status":"OK","result":{
			"name":"Ο Μάγειρας","rating":4.5,"user_ratings_total":120,
			"reviews":[{"author_name":"Νίκος","rating":5,"text":"Τέλειο","time":1714564800}]
		}}`)
	})
	ctx := context.Background()

	got, err := c.PlaceDetails(ctx, "p1", []string{"name", "rating"})
	if err != nil {
		t.Fatal(err)
	}
	want := freedome.Place{
		PlaceID:     "p1",
		Name:        "Ο Μάγειρας",
		Rating:      4.5,
		RatingCount: 120,
		Reviews: []freedome.PlaceReview{{
			AuthorName: "Νίκος",
			Rating:     5,
			Text:       "Τέλειο",
			Time:       time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC),
		}},
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}

	_, err = c.PlaceDetails(ctx, "missing", []string{"name", "rating"})
	if got, want := err, errors.E(errors.NotExist); !errors.Match(want, got) {
		t.Errorf("PlaceDetails(missing) error=%v, want %v", got, want)
	}

	_, err = c.PlaceDetails(ctx, "p1", []string{"name", "favourite_colour"})
	if got, want := err, errors.E(errors.Invalid); !errors.Match(want, got) {
		t.Errorf("PlaceDetails(bad field) error=%v, want %v", got, want)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("maps: ZERO_RESULTS - "), "ZERO_RESULTS"},
		{fmt.Errorf("maps: REQUEST_DENIED - The provided API key is invalid."), "REQUEST_DENIED"},
		{fmt.Errorf("maps: Input missing"), ""},
		{fmt.Errorf("invalid character 'b' looking for beginning of value"), ""},
	}
	for _, tt := range tests {
		if got := statusOf(tt.err); got != tt.want {
			t.Errorf("statusOf(%q) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestNewClientNeedsKey(t *testing.T) {
	_, err := NewClient("", 1)
	if got, want := err, errors.E(errors.Invalid); !errors.Match(want, got) {
		t.Errorf("error=%v, want %v", got, want)
	}
}

func TestHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.Geocode(context.Background(), "Αθήνα")
	if got, want := err, errors.E(errors.Internal); !errors.Match(want, got) {
		t.Errorf("error=%v, want %v", got, want)
	}
}

func TestLimiterHonorsContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","predictions":[]}`)
	})
	c.Limiter.SetLimit(0.001)

	ctx := context.Background()
	if _, err := c.Autocomplete(ctx, "a"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := c.Autocomplete(ctx, "b"); err == nil {
		t.Error("second request within the limit succeeded, want error")
	}
}

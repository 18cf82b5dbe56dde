package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name    string
		cookie  string
		header  string
		want    string
		wantErr bool
	}{
		{name: "empty"},
		{name: "cookie", cookie: "abc", want: "abc"},
		{name: "bearer", header: "Bearer xyz", want: "xyz"},
		{name: "cookie wins", cookie: "abc", header: "Bearer xyz", want: "abc"},
		{name: "malformed", header: "Bearer", wantErr: true},
		{name: "wrong type", header: "Basic Zm9vOmJhcg==", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if test.cookie != "" {
				r.AddCookie(&http.Cookie{Name: "jwt", Value: test.cookie})
			}
			if test.header != "" {
				r.Header.Set("Authorization", test.header)
			}

			got, err := parseRequest(r)
			if test.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != test.want {
				t.Errorf("got %q, want %q", got, test.want)
			}
		})
	}
}

func TestContext(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := Context(context.Background(), ID("u1"), Email("a@b.gr"), Admin(true), AuthTime(now))

	info := User(ctx)
	if info.ID != "u1" || info.Email != "a@b.gr" || !info.IsAdmin {
		t.Errorf("unexpected info %+v", info)
	}
	if !info.SignedInSince(now.Add(-time.Minute)) {
		t.Error("signed in a minute after the cutoff, want true")
	}
	if info.SignedInSince(now.Add(time.Minute)) {
		t.Error("signed in before the cutoff, want false")
	}

	if got := User(context.Background()); got.ID != "" {
		t.Errorf("empty context gave %+v", got)
	}
	if (Info{}).SignedInSince(time.Time{}) {
		t.Error("unknown auth time must not count as a recent sign-in")
	}
}

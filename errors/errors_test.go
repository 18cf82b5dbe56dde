package errors

import (
	"context"
	"net/http"
	"testing"

	"github.com/freedome/freedome"
)

func TestKindPullUp(t *testing.T) {
	inner := E(Op("pg.UserStore.Get"), NotExist, "no such user")
	outer := E(Op("Service.UserGet"), freedome.UserID("u1"), inner)

	e, ok := outer.(*Error)
	if !ok {
		t.Fatalf("got %T, want *Error", outer)
	}
	if e.Kind != NotExist {
		t.Errorf("outer kind = %v, want %v", e.Kind, NotExist)
	}
	if !Is(NotExist, outer) {
		t.Error("Is(NotExist) = false")
	}
	if Is(Permission, outer) {
		t.Error("Is(Permission) = true")
	}
}

func TestIsNested(t *testing.T) {
	err := E(Op("a"), E(Op("b"), E(Op("c"), Reauth, "stale")))
	if !Is(Reauth, err) {
		t.Errorf("Is(Reauth, %v) = false", err)
	}
	if Is(Reauth, nil) {
		t.Error("Is(Reauth, nil) = true")
	}
	if Is(Reauth, context.Canceled) {
		t.Error("plain errors have no kind")
	}
}

func TestMatch(t *testing.T) {
	err := E(Op("Service.FavoriteSet"), freedome.UserID("u1"), Invalid, "bad business id")

	tests := []struct {
		want  error
		match bool
	}{
		{E(Invalid), true},
		{E(Op("Service.FavoriteSet")), true},
		{E(freedome.UserID("u1"), Invalid), true},
		{E(Invalid, "bad business id"), true},
		{E(Permission), false},
		{E(freedome.UserID("u2")), false},
		{E(Invalid, "something else"), false},
	}
	for _, tt := range tests {
		if got := Match(tt.want, err); got != tt.match {
			t.Errorf("Match(%v) = %v, want %v", tt.want, got, tt.match)
		}
	}
}

func TestErrorString(t *testing.T) {
	err := E(Op("Service.UserUpdate"), freedome.UserID("u1"), Invalid, "missing last name")
	want := "Service.UserUpdate, user u1: invalid request: missing last name"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	tests := []struct {
		err    error
		status int
		reason string
	}{
		{E(Incomplete), http.StatusPreconditionRequired, reasonIncomplete},
		{E(Reauth), http.StatusUnauthorized, reasonReauth},
		{E(NotLoggedIn), http.StatusUnauthorized, ""},
		{E(Permission), http.StatusForbidden, ""},
		{E(Invalid, "bad"), http.StatusBadRequest, ""},
		{E(NotExist), http.StatusNotFound, ""},
		{E(Exist), http.StatusConflict, ""},
		{E(Op("x"), E(Op("y"), Incomplete)), http.StatusPreconditionRequired, reasonIncomplete},
	}
	for _, tt := range tests {
		resp := ResponseForError(tt.err)
		if resp.Status != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, resp.Status, tt.status)
		}
		if resp.Reason != tt.reason {
			t.Errorf("%v: reason = %q, want %q", tt.err, resp.Reason, tt.reason)
		}

		back := resp.ToError()
		if !Is(kindOf(tt.err.(*Error)), back) {
			t.Errorf("%v: round trip gave %v", tt.err, back)
		}
	}
}

func TestResponseInternalIsOpaque(t *testing.T) {
	resp := ResponseForError(E(Op("pg.Get"), Errorf("connection refused")))
	if resp.Status != http.StatusInternalServerError {
		t.Errorf("status = %d", resp.Status)
	}
	if resp.Error != http.StatusText(http.StatusInternalServerError) {
		t.Errorf("leaked error text %q", resp.Error)
	}
}

func TestFieldsInResponse(t *testing.T) {
	inner := E(Invalid, Fields{"firstName", "lastName"}, "first and last name are required")
	err := E(Op("Service.UserUpdate"), freedome.UserID("u1"), inner)

	resp := ResponseForError(err)
	d, ok := resp.Details.(fieldDetails)
	if !ok {
		t.Fatalf("details = %#v", resp.Details)
	}
	if len(d.Fields) != 2 || d.Fields[0] != "firstName" {
		t.Errorf("fields = %v", d.Fields)
	}

	// Details arrive as a generic map on the client side.
	resp.Details = map[string]interface{}{"fields": []interface{}{"firstName", "lastName"}}
	back, ok := resp.ToError().(*Error)
	if !ok || back.Kind != Invalid || len(back.Fields) != 2 {
		t.Errorf("ToError() = %#v", back)
	}

	if got := ResponseForError(E(Permission, Fields{"role"})).Details; got != nil {
		t.Errorf("non-validation error leaked details %v", got)
	}
}

func TestCanceledIsClientError(t *testing.T) {
	err := E(Op("Service.BusinessSearch"), context.Canceled)
	if got := ResponseForError(err).Status; got != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", got, http.StatusBadRequest)
	}
	if KindOf(err) != Other {
		t.Errorf("KindOf = %v", KindOf(err))
	}
}

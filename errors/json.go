package errors

import (
	"context"
	stderrors "errors"
	"net/http"
)

// Response is a JSON-serializable version of an Error. It can be used to
// transmit errors across the REST API.
type Response struct {
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Status  int         `json:"status,omitempty"`

	// Reason tells apart errors that share a status code, so the client can
	// send the user to the right screen. It's empty for most errors.
	Reason string `json:"reason,omitempty"`
}

const (
	reasonIncomplete = "profile-incomplete"
	reasonReauth     = "reauthenticate"
)

// ToError converts an ErrorResponse back into an Error
func (e Response) ToError() error {
	if e.Status == http.StatusBadRequest {
		if fields := detailFields(e.Details); len(fields) > 0 {
			return E(Invalid, fields, e.Error)
		}
	}

	switch e.Reason {
	case reasonIncomplete:
		return E(Incomplete, e.Error)
	case reasonReauth:
		return E(Reauth, e.Error)
	}

	switch e.Status {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return E(NotLoggedIn, e.Error)
	case http.StatusForbidden:
		return E(Permission, e.Error)
	case http.StatusBadRequest:
		return E(Invalid, e.Error)
	case http.StatusConflict:
		return E(Exist, e.Error)
	case http.StatusNotFound:
		return E(NotExist, e.Error)
	case http.StatusPreconditionRequired:
		return E(Incomplete, e.Error)
	}
	return Errorf("status %d: %s", e.Status, e.Error)
}

// detailFields recovers the field list from Details after a JSON round trip,
// where it arrives as a generic map.
func detailFields(details interface{}) Fields {
	switch d := details.(type) {
	case fieldDetails:
		return d.Fields
	case map[string]interface{}:
		raw, _ := d["fields"].([]interface{})
		var out Fields
		for _, f := range raw {
			if s, ok := f.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// ResponseForError constructs an ErrorResponse based on an Error. Since this
// object is user-visible it's not a 1-1 mapping. Some errors will return
// detailed information about why the error happened in the Error and Details
// sections. Others wil just return an opaque error type.
func ResponseForError(err error) Response {
	return Response{
		Error:   errText(err),
		Details: errDetails(err),
		Status:  errStatus(err),
		Reason:  errReason(err),
	}
}

func errText(err error) string {
	if e, ok := err.(*Error); ok {
		switch kindOf(e) {
		case Permission:
			return "you don't have access to this resource"
		case NotLoggedIn:
			return "not logged in: please authenticate with firebase and send the token as an Authorization header"
		case Incomplete:
			return "profile incomplete: choose a role and fill in your profile first"
		case Reauth:
			return "your session is too old for this action, please sign in again"
		case NotExist:
			return "not found"
		case Invalid, Exist:
			return e.Error()
		}
	}

	return http.StatusText(errStatus(err))
}

// fieldDetails is sent in Response.Details for validation errors.
type fieldDetails struct {
	Fields Fields `json:"fields"`
}

func errDetails(err error) interface{} {
	e, ok := err.(*Error)
	if !ok || kindOf(e) != Invalid {
		return nil
	}
	for e != nil {
		if len(e.Fields) > 0 {
			return fieldDetails{Fields: e.Fields}
		}
		e, _ = e.Err.(*Error)
	}
	return nil
}

func errReason(err error) string {
	if e, ok := err.(*Error); ok {
		switch kindOf(e) {
		case Incomplete:
			return reasonIncomplete
		case Reauth:
			return reasonReauth
		}
	}
	return ""
}

func errStatus(err error) int {
	// The client went away; a wrapped cancellation is not our failure.
	if KindOf(err) == Other && stderrors.Is(err, context.Canceled) {
		return http.StatusBadRequest
	}

	if e, ok := err.(*Error); ok {
		switch kindOf(e) {
		case Other:
			return http.StatusInternalServerError
		case Invalid:
			return http.StatusBadRequest
		case NotLoggedIn, Reauth:
			return http.StatusUnauthorized
		case Permission:
			return http.StatusForbidden
		case NotExist:
			return http.StatusNotFound
		case Exist:
			return http.StatusConflict
		case Incomplete:
			return http.StatusPreconditionRequired
		case Internal:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}

	return http.StatusInternalServerError
}

// kindOf returns the first non-Other kind in the error chain.
func kindOf(e *Error) Kind {
	for e != nil {
		if e.Kind != Other {
			return e.Kind
		}
		next, ok := e.Err.(*Error)
		if !ok {
			break
		}
		e = next
	}
	return Other
}

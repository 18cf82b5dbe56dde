// Package errors contains the error handling used by freedome. It follows
// the design of upspin.io/errors: an error records the operation, the user
// and a Kind that decides how it is reported over HTTP.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/freedome/freedome"
)

// Error is a domain error for freedome. Any of its fields may be unset.
type Error struct {
	// UserID is the user attempting the operation.
	UserID freedome.UserID
	// Op is the operation being performed, usually the method name, eg
	// "Service.UserUpdate".
	Op Op
	// Kind is the class of error. Other means it's unknown or doesn't matter.
	Kind Kind
	// Err is the error that triggered this one, if any.
	Err error
	// Fields names the request fields that failed validation. It's only
	// sent to clients for Invalid errors, so forms can highlight the inputs.
	Fields Fields
}

// Op describes an operation. eg, "Service.EventGet"
type Op string

// Fields is a list of request field names, in their JSON spelling.
type Fields []string

// Kind is the class of an error. It picks the HTTP status the error is
// reported with.
type Kind int

const (
	Other       Kind = iota // Unclassified error. Not printed in the message.
	Invalid                 // Bad request.
	NotLoggedIn             // No valid credentials.
	Permission              // Permission denied.
	NotExist                // Item does not exist.
	Exist                   // Item already exists.
	Internal                // Internal error or inconsistency.
	Incomplete              // Profile not finished, role unset.
	Reauth                  // Sensitive operation needs a fresh sign-in.
)

var kindText = map[Kind]string{
	Other:       "other error",
	Invalid:     "invalid request",
	NotLoggedIn: "not logged in",
	Permission:  "permission denied",
	NotExist:    "item does not exist",
	Exist:       "item already exists",
	Internal:    "internal error",
	Incomplete:  "profile incomplete",
	Reauth:      "recent sign-in required",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return "unknown error kind"
}

// E builds an error from its arguments, which are told apart by type: Op,
// freedome.UserID, Kind, Fields, a string (the message) or an error (the
// cause). When a type repeats, the last one wins. E panics without
// arguments.
//
// An Other or missing Kind is taken from the wrapped Error, as are Fields.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("call to errors.E with no arguments")
	}

	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Op:
			e.Op = arg
		case freedome.UserID:
			e.UserID = arg
		case Kind:
			e.Kind = arg
		case Fields:
			e.Fields = arg
		case string:
			e.Err = stderrors.New(arg)
		case *Error:
			inner := *arg
			e.Err = &inner
		case error:
			e.Err = arg
		default:
			return Errorf("errors.E: unexpected argument %T(%v)", arg, arg)
		}
	}

	inner, ok := e.Err.(*Error)
	if !ok {
		return e
	}

	// Don't repeat the user or kind in the nested message.
	if inner.UserID == e.UserID {
		inner.UserID = ""
	}
	if inner.Kind == e.Kind {
		inner.Kind = Other
	}
	if e.Kind == Other {
		e.Kind, inner.Kind = inner.Kind, Other
	}
	if len(e.Fields) == 0 {
		e.Fields, inner.Fields = inner.Fields, nil
	}
	return e
}

// Errorf is fmt.Errorf, so callers only need to import this package.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

func (e *Error) empty() bool {
	return e.UserID == "" && e.Op == "" && e.Kind == Other && e.Err == nil && len(e.Fields) == 0
}

// Error formats as "op, user id: kind: cause", leaving out unset parts.
// Nested Errors go on their own indented line.
func (e *Error) Error() string {
	var b strings.Builder
	sep := func(s string) {
		if b.Len() > 0 {
			b.WriteString(s)
		}
	}

	if e.Op != "" {
		sep(": ")
		b.WriteString(string(e.Op))
	}
	if e.UserID != "" {
		sep(", ")
		b.WriteString("user " + string(e.UserID))
	}
	if e.Kind != Other {
		sep(": ")
		b.WriteString(e.Kind.String())
	}
	switch inner := e.Err.(type) {
	case nil:
	case *Error:
		if !inner.empty() {
			sep(":\n\t")
			b.WriteString(inner.Error())
		}
	default:
		sep(": ")
		b.WriteString(inner.Error())
	}

	if b.Len() == 0 {
		return "no error"
	}
	return b.String()
}

// Unwrap returns the cause so the standard library's errors.Is and
// errors.As can see through an Error, eg to find context.Canceled.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the first Kind other than Other in err's chain of Errors.
// Errors from outside this package are Other.
func KindOf(err error) Kind {
	e, ok := err.(*Error)
	if !ok {
		return Other
	}
	return kindOf(e)
}

// Is reports whether err is an *Error of the given Kind. It's false for nil.
func Is(kind Kind, err error) bool {
	e, ok := err.(*Error)
	return ok && kind != Other && kindOf(e) == kind
}

// Match is for tests. It reports whether every field set in want equals the
// same field of got, recursing into nested Errors and comparing other
// causes by message. Both must be *Error.
func Match(want, got error) bool {
	w, ok := want.(*Error)
	if !ok {
		return false
	}
	g, ok := got.(*Error)
	if !ok {
		return false
	}

	switch {
	case w.UserID != "" && g.UserID != w.UserID:
		return false
	case w.Op != "" && g.Op != w.Op:
		return false
	case w.Kind != Other && g.Kind != w.Kind:
		return false
	case w.Err == nil:
		return true
	}
	if _, ok := w.Err.(*Error); ok {
		return Match(w.Err, g.Err)
	}
	return g.Err != nil && g.Err.Error() == w.Err.Error()
}

package freedome

import (
	"time"
)

// EventID identifies an Event.
type EventID string

// Event is a happening published by a business. Users RSVP by adding their
// own id to Attendees.
type Event struct {
	ID          EventID    `json:"id"`
	BusinessID  BusinessID `json:"businessID"`
	Title       string     `json:"title"`
	Description string     `json:"description"`

	// Date is the day of the event, StartTime and EndTime are "15:04" clock
	// times on that day.
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	Attendees []UserID  `json:"attendees"`
	CreatedAt time.Time `json:"createdAt"`

	// Used to side-load the owning business when listing events
	Business *User `json:"business,omitempty"`
}

// IsAttending reports whether id is on the attendee list.
func (e Event) IsAttending(id UserID) bool {
	for _, a := range e.Attendees {
		if a == id {
			return true
		}
	}
	return false
}

// An EventRSVPRequest adds or removes the current user from an event's
// attendee list. When Attending is nil the current state is toggled.
type EventRSVPRequest struct {
	Attending *bool `json:"attending,omitempty"`
}

// EventRSVPReply reports the attendance state after an RSVP.
type EventRSVPReply struct {
	Attending bool  `json:"attending"`
	Event     Event `json:"event"`
}

// OfferID identifies an Offer.
type OfferID string

// Offer is a promotion published by a business.
type Offer struct {
	ID          OfferID    `json:"id"`
	BusinessID  BusinessID `json:"businessID"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`

	// Used to side-load the owning business when listing offers
	Business *User `json:"business,omitempty"`
}

// ListingRequest filters the offers and events pages by the fields of the
// owning business. Empty fields don't filter.
type ListingRequest struct {
	Category string `json:"category"`
	Location string `json:"location"`
	Keyword  string `json:"keyword"`
}

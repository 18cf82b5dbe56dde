package freedome

import (
	"strings"
	"time"
)

// UserID is used to identify Users. It's the Firebase UID of the account.
type UserID string

// Role is a user's account type. It decides which profile shape applies and
// which parts of the API the user can reach.
type Role string

const (
	// RoleUnset is the role of a user who signed in but never finished the
	// profile builder.
	RoleUnset Role = ""
	// RoleClient is a regular user browsing businesses.
	RoleClient Role = "client"
	// RoleBusiness is a user listing a business in the directory.
	RoleBusiness Role = "business"
)

// Valid reports whether r is one of the roles a user can pick.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleBusiness
}

// User is a user record. Once Role is set exactly one of Client and Business
// is populated.
type User struct {
	ID          UserID    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`

	Client   *ClientProfile   `json:"client,omitempty"`
	Business *BusinessProfile `json:"business,omitempty"`

	// Favorites is always in the map form once it's been decoded. See
	// Favorites.UnmarshalJSON.
	Favorites Favorites `json:"favorites"`
}

// IsBusiness reports whether the user is a business with a profile.
func (u User) IsBusiness() bool {
	return u.Role == RoleBusiness && u.Business != nil
}

// ClientProfile is the profile collected from client users.
type ClientProfile struct {
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Birthday  time.Time `json:"birthday"`
	Gender    string    `json:"gender"`
	Location  string    `json:"location"`
}

// BusinessProfile is the profile collected from business users.
//
// Emails, Phones and Keywords are stored as the comma-separated strings the
// profile form produces. Use the List helpers to split them.
type BusinessProfile struct {
	BusinessName string `json:"businessName"`
	LogoURL      string `json:"logoURL"`
	Location     string `json:"location"`
	TaxID        string `json:"taxID"`
	BusinessType string `json:"businessType"`
	Category     string `json:"category"`
	Emails       string `json:"emails"`
	Phones       string `json:"phones"`
	Fax          string `json:"fax"`
	Keywords     string `json:"keywords"`
	Description  string `json:"description"`

	// PlaceID is the maps provider's id for the business, used to look up
	// the external rating.
	PlaceID string `json:"placeID,omitempty"`

	// Coordinates are geocoded from Location. They're nil until geocoding
	// succeeds.
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// EmailList splits the comma-separated Emails field.
func (b BusinessProfile) EmailList() []string { return splitList(b.Emails) }

// PhoneList splits the comma-separated Phones field.
func (b BusinessProfile) PhoneList() []string { return splitList(b.Phones) }

// KeywordList splits the comma-separated Keywords field.
func (b BusinessProfile) KeywordList() []string { return splitList(b.Keywords) }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// A ProfileUpdate is used by the profile builder to update a User.
type ProfileUpdate struct {
	DisplayName string           `json:"displayName"`
	PhotoURL    string           `json:"photoURL"`
	Role        Role             `json:"role"`
	Client      *ClientProfile   `json:"client,omitempty"`
	Business    *BusinessProfile `json:"business,omitempty"`

	// Mask is a comma-delimited list of json names for the fields this update
	// will change. Only fields listed in the mask will be updated.
	//
	// eg: "role,business" sets the role and replaces the business profile.
	//
	// This is similar to protobuf's FieldMask well known type.
	Mask string `json:"mask"`
}

// Has reports whether field is listed in the update's mask.
func (u ProfileUpdate) Has(field string) bool {
	for _, f := range strings.Split(u.Mask, ",") {
		if strings.TrimSpace(f) == field {
			return true
		}
	}
	return false
}

// Apply merges the masked fields of u into user and returns the result.
// Coordinates of an existing business profile survive the merge; the caller
// decides whether they're stale.
func (u ProfileUpdate) Apply(user User) User {
	if u.Has("displayName") {
		user.DisplayName = u.DisplayName
	}
	if u.Has("photoURL") {
		user.PhotoURL = u.PhotoURL
	}
	if u.Has("role") {
		user.Role = u.Role
	}
	if u.Has("client") && u.Client != nil {
		c := *u.Client
		user.Client = &c
	}
	if u.Has("business") && u.Business != nil {
		b := *u.Business
		if b.Coordinates == nil && user.Business != nil {
			b.Coordinates = user.Business.Coordinates
		}
		user.Business = &b
	}
	return user
}

package service

import (
	"net/mail"
	"strings"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
)

// checkRole rejects role changes. A role can be picked once and never
// switched afterwards.
func checkRole(current freedome.User, update freedome.ProfileUpdate) error {
	if !update.Has("role") {
		return nil
	}
	if !update.Role.Valid() {
		return errors.E(errors.Invalid, errors.Fields{"role"}, errors.Errorf("unknown role %q", update.Role))
	}
	if current.Role != freedome.RoleUnset && current.Role != update.Role {
		return errors.E(errors.Permission, "role can't be changed once set")
	}
	return nil
}

// checkProfile validates the profile that matches u's role.
func checkProfile(u freedome.User) error {
	switch u.Role {
	case freedome.RoleUnset:
		if u.Client != nil || u.Business != nil {
			return errors.E(errors.Invalid, "pick a role before filling in a profile")
		}
		return nil

	case freedome.RoleClient:
		if u.Business != nil {
			return errors.E(errors.Invalid, "client accounts can't have a business profile")
		}
		c := u.Client
		if c == nil {
			return errors.E(errors.Invalid, "client profile missing")
		}
		var missing errors.Fields
		if strings.TrimSpace(c.FirstName) == "" {
			missing = append(missing, "firstName")
		}
		if strings.TrimSpace(c.LastName) == "" {
			missing = append(missing, "lastName")
		}
		if len(missing) > 0 {
			return errors.E(errors.Invalid, missing, "first and last name are required")
		}
		return nil

	case freedome.RoleBusiness:
		if u.Client != nil {
			return errors.E(errors.Invalid, "business accounts can't have a client profile")
		}
		b := u.Business
		if b == nil {
			return errors.E(errors.Invalid, "business profile missing")
		}
		var missing errors.Fields
		if strings.TrimSpace(b.BusinessName) == "" {
			missing = append(missing, "businessName")
		}
		if strings.TrimSpace(b.Category) == "" {
			missing = append(missing, "category")
		}
		if strings.TrimSpace(b.Location) == "" {
			missing = append(missing, "location")
		}
		if len(missing) > 0 {
			return errors.E(errors.Invalid, missing, errors.Errorf("required: %s", strings.Join(missing, ", ")))
		}
		for _, email := range b.EmailList() {
			if !validEmail(email) {
				return errors.E(errors.Invalid, errors.Fields{"emails"}, errors.Errorf("bad email address %q", email))
			}
		}
		return nil
	}

	return errors.E(errors.Invalid, errors.Errorf("unknown role %q", u.Role))
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

// checkEvent validates the schedule of an event.
func checkEvent(e freedome.Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return errors.E(errors.Invalid, errors.Fields{"title"}, "title is required")
	}
	if _, err := time.Parse("2006-01-02", e.Date); err != nil {
		return errors.E(errors.Invalid, errors.Fields{"date"}, errors.Errorf("bad date %q, want YYYY-MM-DD", e.Date))
	}
	start, err := time.Parse("15:04", e.StartTime)
	if err != nil {
		return errors.E(errors.Invalid, errors.Fields{"startTime"}, errors.Errorf("bad start time %q, want HH:MM", e.StartTime))
	}
	end, err := time.Parse("15:04", e.EndTime)
	if err != nil {
		return errors.E(errors.Invalid, errors.Fields{"endTime"}, errors.Errorf("bad end time %q, want HH:MM", e.EndTime))
	}
	if !end.After(start) {
		return errors.E(errors.Invalid, errors.Fields{"endTime"}, "event must end after it starts")
	}
	return nil
}

package freedome

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// BusinessID identifies a business. It's the UserID of the business account.
type BusinessID string

// Favorite records a user's bookmark of a business, optionally annotated with
// tags and a free-text note.
type Favorite struct {
	Tags []string `json:"tags"`
	Note string   `json:"note"`
}

// Favorites maps the favorited businesses to their annotations.
//
// Older user records store favorites as a plain array of business ids. Both
// shapes decode to the map form, and only the map form is ever written.
type Favorites map[BusinessID]Favorite

// Has reports whether id is one of the favorites.
func (f Favorites) Has(id BusinessID) bool {
	_, ok := f[id]
	return ok
}

// IDs returns the favorited business ids in a stable order.
func (f Favorites) IDs() []BusinessID {
	ids := make([]BusinessID, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// UnmarshalJSON accepts either a JSON array of business ids or an object
// keyed by business id.
func (f *Favorites) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = Favorites{}
		return nil
	}

	switch data[0] {
	case '[':
		var ids []BusinessID
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		out := make(Favorites, len(ids))
		for _, id := range ids {
			if id != "" {
				out[id] = Favorite{Tags: []string{}}
			}
		}
		*f = out
		return nil

	case '{':
		var m map[BusinessID]Favorite
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		out := make(Favorites, len(m))
		for id, fav := range m {
			if fav.Tags == nil {
				fav.Tags = []string{}
			}
			out[id] = fav
		}
		*f = out
		return nil
	}

	return fmt.Errorf("favorites: unexpected JSON %.20q", data)
}

// DecodeFavorites converts a loosely typed favorites value, as returned by a
// document store, into Favorites. Unknown shapes decode to an empty set.
func DecodeFavorites(v interface{}) Favorites {
	out := Favorites{}

	switch v := v.(type) {
	case []interface{}:
		for _, item := range v {
			if id, ok := item.(string); ok && id != "" {
				out[BusinessID(id)] = Favorite{Tags: []string{}}
			}
		}

	case []string:
		for _, id := range v {
			if id != "" {
				out[BusinessID(id)] = Favorite{Tags: []string{}}
			}
		}

	case map[string]interface{}:
		for id, raw := range v {
			fav := Favorite{Tags: []string{}}
			if m, ok := raw.(map[string]interface{}); ok {
				if note, ok := m["note"].(string); ok {
					fav.Note = note
				}
				if tags, ok := m["tags"].([]interface{}); ok {
					for _, t := range tags {
						if s, ok := t.(string); ok {
							fav.Tags = append(fav.Tags, s)
						}
					}
				}
			}
			out[BusinessID(id)] = fav
		}
	}

	return out
}

// FavoriteEntry is a favorite joined with the business it points at. It's
// returned when listing a user's favorites.
type FavoriteEntry struct {
	BusinessID BusinessID `json:"businessID"`
	Favorite
	Business *User `json:"business,omitempty"`
}

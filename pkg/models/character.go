package models

import (
	"bytes"
	"encoding/json"
)

// Source tags where a character record originated.
const (
	SourceCanonical = "canonical" // remote catalog, possibly overridden locally
	SourceFiller    = "filler"    // created only in the local overlay
)

// Character is the normalized form served to clients and stored in the
// overlay. Remote and local records share one id space.
type Character struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Species   string `json:"species"`
	Type      string `json:"type"`
	Gender    string `json:"gender"`
	Origin    string `json:"origin,omitempty"`
	Location  string `json:"location,omitempty"`
	Image     string `json:"image"`
	Source    string `json:"source"`
	DeletedAt string `json:"deleted_at,omitempty"`
}

// Live reports whether the record has not been tombstoned.
func (c Character) Live() bool { return c.DeletedAt == "" }

// Raw lifts a normalized character back into the ingestion shape.
func (c Character) Raw() RawCharacter {
	return RawCharacter{
		ID:        c.ID,
		Name:      c.Name,
		Status:    c.Status,
		Species:   c.Species,
		Type:      c.Type,
		Gender:    c.Gender,
		Origin:    PlaceFromName(c.Origin),
		Location:  PlaceFromName(c.Location),
		Image:     c.Image,
		Source:    c.Source,
		DeletedAt: c.DeletedAt,
	}
}

// RawCharacter is a character as it arrives from the remote catalog or a
// client payload. Fields the system does not know about are dropped on decode.
type RawCharacter struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Species   string `json:"species"`
	Type      string `json:"type"`
	Gender    string `json:"gender"`
	Origin    Place  `json:"origin"`
	Location  Place  `json:"location"`
	Image     string `json:"image"`
	Source    string `json:"source,omitempty"`
	DeletedAt string `json:"deleted_at,omitempty"`
}

// Place is a reference to a location that may be sent as a bare label,
// as an object carrying a "name", or as null.
//
// Valid means a label was decoded. Present means the payload carried a
// truthy value at all, so {} is present but has no label.
type Place struct {
	Name    string
	Valid   bool
	Present bool
}

// PlaceFromName returns a set Place for a non-empty label.
func PlaceFromName(name string) Place {
	return Place{Name: name, Valid: name != "", Present: name != ""}
}

func (p *Place) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*p = Place{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Place{Name: s, Valid: true, Present: s != ""}
	case '{':
		var obj struct {
			Name *string `json:"name"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		p.Present = true
		if obj.Name != nil {
			p.Name, p.Valid = *obj.Name, true
		}
	case '[':
		p.Present = true
	default:
		// numbers and bools carry no label
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		p.Present = v != false && v != float64(0)
	}
	return nil
}

func (p Place) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Name)
}

// CharacterPatch carries the fields of a partial update. Nil fields are
// left untouched. Identity, source and tombstone are not patchable.
type CharacterPatch struct {
	Name     *string `json:"name"`
	Status   *string `json:"status"`
	Species  *string `json:"species"`
	Type     *string `json:"type"`
	Gender   *string `json:"gender"`
	Origin   *Place  `json:"origin"`
	Location *Place  `json:"location"`
	Image    *string `json:"image"`
}

// Apply returns c with every provided patch field replacing the existing one.
func (p CharacterPatch) Apply(c Character) Character {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Species != nil {
		c.Species = *p.Species
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Gender != nil {
		c.Gender = *p.Gender
	}
	if p.Origin != nil {
		c.Origin = p.Origin.Name
	}
	if p.Location != nil {
		c.Location = p.Location.Name
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
	return c
}

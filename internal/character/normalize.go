package character

import "characterhub/pkg/models"

// Normalize collapses a raw record into the canonical Character shape.
// Places are flattened to their label; unset places become empty.
func Normalize(raw models.RawCharacter) models.Character {
	return models.Character{
		ID:        raw.ID,
		Name:      raw.Name,
		Status:    raw.Status,
		Species:   raw.Species,
		Type:      raw.Type,
		Gender:    raw.Gender,
		Origin:    raw.Origin.Name,
		Location:  raw.Location.Name,
		Image:     raw.Image,
		Source:    raw.Source,
		DeletedAt: raw.DeletedAt,
	}
}

// NormalizeAll normalizes element-wise and keeps order. Never returns nil.
func NormalizeAll(raws []models.RawCharacter) []models.Character {
	out := make([]models.Character, 0, len(raws))
	for _, r := range raws {
		out = append(out, Normalize(r))
	}
	return out
}

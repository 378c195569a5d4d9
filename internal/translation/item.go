package translation

import "translation-api/internal/models"

// Item is the JSON-facing projection of one translation record.
type Item struct {
	Key          string       `json:"key"`
	Category     *string      `json:"category"`
	Translations Translations `json:"translations"`
}

// Translations holds the four language strings. Missing values are "".
type Translations struct {
	De string `json:"de"`
	En string `json:"en"`
	Fr string `json:"fr"`
	It string `json:"it"`
}

// BuildItem projects a record into an Item.
func BuildItem(t *models.Translation) Item {
	return Item{
		Key:      t.Key,
		Category: t.CategoryName(),
		Translations: Translations{
			De: deref(t.De),
			En: deref(t.En),
			Fr: deref(t.Fr),
			It: deref(t.It),
		},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

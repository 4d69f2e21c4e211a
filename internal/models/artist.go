package models

// Artist is a roster entry. Profile management lives elsewhere; the booking
// core only needs the plan (commission tier), declared genres for gig alerts
// and an optional telegram chat for notifications.
type Artist struct {
	ID             int64    `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Genres         []string `json:"genres" yaml:"genres"`
	Plan           string   `json:"plan" yaml:"plan"` // standard, pro
	TelegramChatID int64    `json:"telegram_chat_id,omitempty" yaml:"telegram_chat_id"`
}

// HasGenre reports whether the artist declared the given genre.
func (a *Artist) HasGenre(genre string) bool {
	for _, g := range a.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

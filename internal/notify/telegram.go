package notify

import (
	"encoding/json"
	"fmt"

	"palco/internal/domain"
	"palco/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Dispatcher pushes gig alerts to artists over Telegram. Strictly
// fire-and-forget: a delivery failure is logged and never propagates into
// the flow that raised the event.
type Dispatcher struct {
	sender domain.TelegramSender
	repo   domain.Repository
	log    zerolog.Logger
}

func NewDispatcher(sender domain.TelegramSender, repo domain.Repository, log *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		repo:   repo,
		log:    log.With().Str("component", "notify").Logger(),
	}
}

// Register subscribes the dispatcher to gig-posted events on the bus.
func (d *Dispatcher) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventGigPosted, d.handleGigPosted)
}

func (d *Dispatcher) handleGigPosted(event *events.Event) error {
	var payload events.GigEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		d.log.Error().Err(err).Msg("failed to decode gig posted event")
		return nil
	}

	artists := d.repo.ArtistsByGenre(payload.Genre)
	if len(artists) == 0 {
		return nil
	}

	text := fmt.Sprintf(
		"Novo show disponível!\nData: %s\nCachê: R$%s\nGênero: %s",
		payload.Date.Format("02/01/2006"),
		payload.Payment.StringFixed(2),
		payload.Genre,
	)

	sent := 0
	for _, artist := range artists {
		if artist.TelegramChatID == 0 {
			continue
		}
		msg := tgbotapi.NewMessage(artist.TelegramChatID, text)
		if _, err := d.sender.Send(msg); err != nil {
			d.log.Warn().Err(err).Int64("artist_id", artist.ID).Msg("failed to send gig alert")
			continue
		}
		sent++
	}

	d.log.Info().Int64("gig_id", payload.GigID).Int("sent", sent).Msg("gig alerts dispatched")
	return nil
}

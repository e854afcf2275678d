package telegram

import (
	"strings"

	"chatpay/internal/bot"
	"chatpay/internal/models"
)

type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

type Message struct {
	MessageID int64     `json:"message_id"`
	From      *ChatUser `json:"from"`
	Text      string    `json:"text"`
	Contact   *Contact  `json:"contact"`
}

type ChatUser struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"is_bot"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
	IsPremium    bool   `json:"is_premium"`
}

type Contact struct {
	PhoneNumber string `json:"phone_number"`
	UserID      int64  `json:"user_id"`
}

type CallbackQuery struct {
	ID   string    `json:"id"`
	From *ChatUser `json:"from"`
	Data string    `json:"data"`
}

// ParseEvent maps an update onto the router's event model and the identity
// snapshot of whoever triggered it. The second return is false when the
// update carries nothing the router can act on.
func ParseEvent(update Update) (models.Profile, bot.Event, bool) {
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return profileFrom(update.CallbackQuery.From), bot.ButtonPress{Token: update.CallbackQuery.Data}, true
	}
	if update.Message == nil || update.Message.From == nil {
		return models.Profile{}, nil, false
	}
	profile := profileFrom(update.Message.From)
	if update.Message.Contact != nil {
		return profile, bot.ContactShared{Phone: update.Message.Contact.PhoneNumber}, true
	}
	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return models.Profile{}, nil, false
	}
	if strings.HasPrefix(text, "/") {
		name := strings.TrimPrefix(text, "/")
		if i := strings.IndexAny(name, " @"); i >= 0 {
			name = name[:i]
		}
		return profile, bot.Command{Name: name}, true
	}
	return profile, bot.FreeText{Text: text}, true
}

func profileFrom(from *ChatUser) models.Profile {
	return models.Profile{
		ID:        from.ID,
		Handle:    from.Username,
		FirstName: from.FirstName,
		LastName:  from.LastName,
		Language:  from.LanguageCode,
		IsPremium: from.IsPremium,
		IsBot:     from.IsBot,
	}
}

package bot

import (
	"context"
	"fmt"
	"strings"

	"chatpay/internal/models"
	"chatpay/internal/money"
	"chatpay/internal/services"
	"chatpay/internal/session"
	"chatpay/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chatpay_events_total",
	Help: "Inbound chat events by type",
}, []string{"type"})

type Users interface {
	UpsertProfile(ctx context.Context, p models.Profile) (models.User, error)
	Get(ctx context.Context, id int64) (models.User, error)
	Search(ctx context.Context, query string, excludeID int64) ([]models.User, error)
	SetLogin(ctx context.Context, id int64, login string) error
	SetPhone(ctx context.Context, id int64, phone string) error
	CompleteRegistration(ctx context.Context, id int64) error
	Stats(ctx context.Context, user models.User) (services.Stats, error)
}

type Ledger interface {
	CreateTransfer(ctx context.Context, senderID, recipientID, amountMinor int64) (models.Transfer, error)
	ConfirmTransfer(ctx context.Context, transferID int64, decision string) (models.Transfer, error)
	Receive(ctx context.Context, transferID, amountMinor, receiverID int64) (models.Transfer, error)
	PendingForReceivers(ctx context.Context) ([]store.TransferWithParties, error)
	GetTransfer(ctx context.Context, transferID int64) (models.Transfer, error)
}

type Sessions interface {
	Lock(accountID int64) func()
	Get(accountID int64) session.Session
	SetExpectation(accountID int64, expectation session.Expectation, patch session.Patch)
	Clear(accountID int64)
}

// Router interprets inbound events against the caller's session and turns
// them into outbound intents. Recoverable ledger and validation errors
// become re-prompts; only infrastructure failures surface as an error.
type Router struct {
	users    Users
	ledger   Ledger
	sessions Sessions
}

func NewRouter(users Users, ledger Ledger, sessions Sessions) *Router {
	return &Router{users: users, ledger: ledger, sessions: sessions}
}

func (r *Router) HandleEvent(ctx context.Context, from models.Profile, ev Event) ([]Outbound, error) {
	unlock := r.sessions.Lock(from.ID)
	defer unlock()

	user, err := r.users.UpsertProfile(ctx, from)
	if err != nil {
		return nil, err
	}

	switch e := ev.(type) {
	case Command:
		eventsTotal.WithLabelValues("command").Inc()
		return r.handleCommand(ctx, user, from, strings.ToLower(e.Name))
	case ButtonPress:
		eventsTotal.WithLabelValues("button").Inc()
		return r.handleButton(ctx, user, e.Token)
	case FreeText:
		eventsTotal.WithLabelValues("text").Inc()
		text := strings.TrimSpace(e.Text)
		if out, handled, err := r.handleMenuLabel(ctx, user, text); handled {
			return out, err
		}
		return r.handleText(ctx, user, text)
	case ContactShared:
		eventsTotal.WithLabelValues("contact").Inc()
		return r.handleContact(ctx, user, strings.TrimSpace(e.Phone))
	}
	return nil, nil
}

func (r *Router) handleCommand(ctx context.Context, user models.User, from models.Profile, name string) ([]Outbound, error) {
	switch name {
	case "start":
		firstName := from.FirstName
		if firstName == "" {
			firstName = "there"
		}
		greeting := fmt.Sprintf("Hi, %s! Welcome back.", firstName)
		if !user.Registered {
			greeting = fmt.Sprintf("Hi, %s!\nWelcome. Please complete registration to use all features.", firstName)
		}
		return []Outbound{r.reply(user.ID, greeting), r.menu(user)}, nil
	case "help":
		return []Outbound{r.reply(user.ID, "Available commands: /start, /register, /stats, /help")}, nil
	case "register":
		return r.startRegistration(user)
	case "stats":
		return r.showStats(ctx, user)
	}
	return []Outbound{r.reply(user.ID, "Unknown command. Send /help for the list.")}, nil
}

func (r *Router) handleMenuLabel(ctx context.Context, user models.User, text string) ([]Outbound, bool, error) {
	switch text {
	case BtnRegister:
		out, err := r.startRegistration(user)
		return out, true, err
	case BtnStats:
		out, err := r.showStats(ctx, user)
		return out, true, err
	case BtnSearch:
		if user.Role != models.RoleSender && user.Role != models.RoleAdmin {
			return []Outbound{r.reply(user.ID, "Only senders can search for users.")}, true, nil
		}
		r.enter(user.ID, session.ExpectSearchUser, session.Patch{})
		return []Outbound{r.reply(user.ID, "Enter a login or phone number to search for:")}, true, nil
	case BtnReceive:
		out, err := r.listReceivable(ctx, user)
		return out, true, err
	case BtnSettings:
		return []Outbound{{
			ChatID: user.ID,
			Text:   "Choose an action:",
			Inline: [][]Button{
				{{Text: "Change login", Data: tokenChangeLogin}},
				{{Text: "Change phone", Data: tokenChangePhone}},
			},
		}}, true, nil
	}
	return nil, false, nil
}

func (r *Router) handleButton(ctx context.Context, user models.User, token string) ([]Outbound, error) {
	switch token {
	case tokenChangeLogin:
		r.enter(user.ID, session.ExpectLogin, session.Patch{})
		return []Outbound{r.reply(user.ID, "Enter your new login:")}, nil
	case tokenChangePhone:
		r.enter(user.ID, session.ExpectPhone, session.Patch{})
		return []Outbound{r.phonePrompt(user.ID, "Enter your new phone number or share your contact:")}, nil
	}
	if recipientID, ok := cutID(token, prefixSendMoney); ok {
		return r.startSendFlow(ctx, user, recipientID)
	}
	if transferID, ok := cutID(token, prefixReceiveTx); ok {
		return r.startReceiveFlow(ctx, user, transferID)
	}
	if transferID, ok := cutID(token, prefixConfirmYes); ok {
		return r.confirmTransfer(ctx, user, transferID, models.TransferConfirmed)
	}
	if transferID, ok := cutID(token, prefixConfirmNo); ok {
		return r.confirmTransfer(ctx, user, transferID, models.TransferCanceled)
	}
	return nil, nil
}

func (r *Router) handleText(ctx context.Context, user models.User, text string) ([]Outbound, error) {
	s := r.sessions.Get(user.ID)
	switch s.Expectation {
	case session.ExpectNone:
		// A pending payment target set by a button press makes the next
		// free text the first half of the amount handshake.
		if s.Counterparty != 0 {
			return r.stageSendAmount(user, text), nil
		}
		return nil, nil
	case session.ExpectLogin:
		return r.loginStep(ctx, user, s, text)
	case session.ExpectPhone:
		return r.phoneStep(ctx, user, s, text, false)
	case session.ExpectSearchUser:
		return r.searchStep(ctx, user, text)
	case session.ExpectConfirmAmount:
		return r.confirmSendAmount(ctx, user, s, text)
	case session.ExpectSelectingTransaction:
		return r.selectReceiveAmount(ctx, user, s, text)
	case session.ExpectConfirmReceiving:
		return r.confirmReceiveAmount(ctx, user, s, text)
	}
	return nil, nil
}

func (r *Router) handleContact(ctx context.Context, user models.User, phone string) ([]Outbound, error) {
	s := r.sessions.Get(user.ID)
	if s.Expectation != session.ExpectPhone {
		return nil, nil
	}
	return r.phoneStep(ctx, user, s, phone, true)
}

// enter starts a fresh flow: any previous pending state is dropped before
// the new expectation is set.
func (r *Router) enter(accountID int64, expectation session.Expectation, patch session.Patch) {
	r.sessions.Clear(accountID)
	r.sessions.SetExpectation(accountID, expectation, patch)
}

func (r *Router) reply(chatID int64, text string) Outbound {
	return Outbound{ChatID: chatID, Text: text}
}

func (r *Router) phonePrompt(chatID int64, text string) Outbound {
	return Outbound{
		ChatID:   chatID,
		Text:     text,
		Keyboard: [][]Button{{{Text: BtnShareContact, RequestContact: true}}},
		OneTime:  true,
	}
}

func (r *Router) menu(user models.User) Outbound {
	var row []Button
	if !user.Registered && user.Role == models.RoleUser {
		row = append(row, Button{Text: BtnRegister})
	}
	row = append(row, Button{Text: BtnStats})
	switch user.Role {
	case models.RoleSender, models.RoleAdmin:
		row = append(row, Button{Text: BtnSearch})
	case models.RoleReceiver:
		row = append(row, Button{Text: BtnReceive})
	}
	return Outbound{
		ChatID:   user.ID,
		Text:     "Choose an action:",
		Keyboard: [][]Button{row, {{Text: BtnSettings}}},
	}
}

func displayName(user models.User) string {
	if user.Login != nil && *user.Login != "" {
		return *user.Login
	}
	if user.Handle != nil && *user.Handle != "" {
		return *user.Handle
	}
	return fmt.Sprintf("account %d", user.ID)
}

func formatAmount(minor int64) string {
	return money.FormatMinor(minor) + "$"
}

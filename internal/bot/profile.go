package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chatpay/internal/models"
	"chatpay/internal/services"
	"chatpay/internal/session"
	"chatpay/internal/validator"
)

func (r *Router) startRegistration(user models.User) ([]Outbound, error) {
	if user.Registered {
		return []Outbound{r.reply(user.ID, "You are already registered!")}, nil
	}
	r.enter(user.ID, session.ExpectLogin, session.Patch{Registering: session.Bool(true)})
	return []Outbound{r.reply(user.ID, "Enter your login (for example: user123):")}, nil
}

func (r *Router) loginStep(ctx context.Context, user models.User, s session.Session, text string) ([]Outbound, error) {
	if err := validator.ValidateLogin(text); err != nil {
		return []Outbound{r.reply(user.ID, "Login must be 3 to 20 characters. Try again.")}, nil
	}
	if isReservedInput(text) {
		return []Outbound{r.reply(user.ID, "This login is not allowed. Choose another.")}, nil
	}
	if err := r.users.SetLogin(ctx, user.ID, text); err != nil {
		if errors.Is(err, services.ErrLoginTaken) {
			return []Outbound{r.reply(user.ID, "This login is already taken. Try another.")}, nil
		}
		return nil, err
	}
	if s.Registering {
		r.sessions.SetExpectation(user.ID, session.ExpectPhone, session.Patch{})
		return []Outbound{r.phonePrompt(user.ID, "Enter your phone number or share your contact:")}, nil
	}
	out := []Outbound{r.reply(user.ID, fmt.Sprintf("Your new login: %s", text))}
	r.sessions.Clear(user.ID)
	user.Login = &text
	return append(out, r.menu(user)), nil
}

func (r *Router) phoneStep(ctx context.Context, user models.User, s session.Session, phone string, fromContact bool) ([]Outbound, error) {
	if !fromContact {
		if err := validator.ValidatePhone(phone); err != nil {
			return []Outbound{r.reply(user.ID, "Invalid phone number. Try again.")}, nil
		}
	}
	if err := r.users.SetPhone(ctx, user.ID, phone); err != nil {
		return nil, err
	}
	if s.Registering {
		if err := r.users.CompleteRegistration(ctx, user.ID); err != nil {
			return nil, err
		}
		r.sessions.Clear(user.ID)
		user.Registered = true
		return []Outbound{
			r.reply(user.ID, "Registration complete!"),
			r.menu(user),
		}, nil
	}
	out := []Outbound{r.reply(user.ID, fmt.Sprintf("Your new phone number: %s", phone))}
	r.sessions.Clear(user.ID)
	return append(out, r.menu(user)), nil
}

func (r *Router) searchStep(ctx context.Context, user models.User, text string) ([]Outbound, error) {
	query := strings.TrimSpace(strings.TrimPrefix(text, "/search"))
	if query == "" {
		return []Outbound{r.reply(user.ID, "Enter a login or phone number to search for.")}, nil
	}
	found, err := r.users.Search(ctx, query, user.ID)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return []Outbound{r.reply(user.ID, "No users found.")}, nil
	}
	out := make([]Outbound, 0, len(found))
	for _, match := range found {
		out = append(out, Outbound{
			ChatID: user.ID,
			Text: fmt.Sprintf("Handle: %s\nLogin: %s\nPhone: %s",
				orDash(match.Handle), orDash(match.Login), orDash(match.Phone)),
			Inline: [][]Button{{{Text: "Send money", Data: SendMoneyToken(match.ID)}}},
		})
	}
	// The expectation stays set so the sender can refine the search.
	return out, nil
}

func (r *Router) showStats(ctx context.Context, user models.User) ([]Outbound, error) {
	stats, err := r.users.Stats(ctx, user)
	if err != nil {
		return nil, err
	}
	if stats.Payments == 0 {
		return []Outbound{r.reply(user.ID, "You have no payments yet.")}, nil
	}
	var b strings.Builder
	b.WriteString("Statistics\n\n")
	fmt.Fprintf(&b, "Payments: %d\n", stats.Payments)
	fmt.Fprintf(&b, "Total amount: %s\n", formatAmount(stats.TotalMinor))
	if stats.TotalUsers != nil {
		fmt.Fprintf(&b, "Total users: %d\n", *stats.TotalUsers)
	}
	if stats.LastAt != nil {
		fmt.Fprintf(&b, "Last payment: %s\n", stats.LastAt.Format(time.DateTime))
	}
	if stats.LastAmountMinor != nil {
		fmt.Fprintf(&b, "Last payment amount: %s", formatAmount(*stats.LastAmountMinor))
	}
	return []Outbound{r.reply(user.ID, strings.TrimRight(b.String(), "\n"))}, nil
}

func orDash(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	return *value
}

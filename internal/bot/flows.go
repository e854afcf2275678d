package bot

import (
	"context"
	"errors"
	"fmt"

	"chatpay/internal/models"
	"chatpay/internal/money"
	"chatpay/internal/services"
	"chatpay/internal/session"
)

func (r *Router) startSendFlow(ctx context.Context, user models.User, recipientID int64) ([]Outbound, error) {
	if user.Role != models.RoleSender && user.Role != models.RoleAdmin {
		return []Outbound{r.reply(user.ID, "Only senders can send money.")}, nil
	}
	if _, err := r.users.Get(ctx, recipientID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return []Outbound{r.reply(user.ID, "Recipient not found.")}, nil
		}
		return nil, err
	}
	r.enter(user.ID, session.ExpectNone, session.Patch{Counterparty: session.Int64(recipientID)})
	return []Outbound{r.reply(user.ID, "Enter the amount to send:")}, nil
}

// stageSendAmount records the first half of the repeat-to-confirm
// handshake and asks for the value again.
func (r *Router) stageSendAmount(user models.User, text string) []Outbound {
	amount, err := money.ParseMinor(text)
	if err != nil || amount <= 0 {
		return []Outbound{r.reply(user.ID, "Enter a valid amount.")}
	}
	r.sessions.SetExpectation(user.ID, session.ExpectConfirmAmount, session.Patch{AmountMinor: session.Int64(amount)})
	return []Outbound{r.reply(user.ID, fmt.Sprintf("Confirming %s. Send the same amount again to confirm.", formatAmount(amount)))}
}

func (r *Router) confirmSendAmount(ctx context.Context, user models.User, s session.Session, text string) ([]Outbound, error) {
	if s.AmountMinor == 0 {
		// A previous mismatch dropped the staged value; start the
		// handshake over.
		return r.stageSendAmount(user, text), nil
	}
	amount, err := money.ParseMinor(text)
	if err != nil || amount != s.AmountMinor {
		r.sessions.SetExpectation(user.ID, session.ExpectConfirmAmount, session.Patch{AmountMinor: session.Int64(0)})
		return []Outbound{r.reply(user.ID, "Amounts do not match. Try again.")}, nil
	}
	transfer, err := r.ledger.CreateTransfer(ctx, user.ID, s.Counterparty, amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			r.sessions.SetExpectation(user.ID, session.ExpectConfirmAmount, session.Patch{AmountMinor: session.Int64(0)})
			return []Outbound{r.reply(user.ID, "Enter a valid amount.")}, nil
		case errors.Is(err, services.ErrMissingParty):
			r.sessions.Clear(user.ID)
			return []Outbound{r.reply(user.ID, "Recipient not found.")}, nil
		}
		return nil, err
	}
	recipientName := fmt.Sprintf("account %d", s.Counterparty)
	if recipient, err := r.users.Get(ctx, s.Counterparty); err == nil {
		recipientName = displayName(recipient)
	}
	out := []Outbound{
		r.reply(user.ID, fmt.Sprintf("You sent %s to %s.", formatAmount(amount), recipientName)),
		{
			ChatID: transfer.RecipientID,
			Text:   fmt.Sprintf("You received %s. Do you confirm the transfer?", formatAmount(amount)),
			Inline: [][]Button{{
				{Text: "Yes", Data: ConfirmToken(transfer.ID, true)},
				{Text: "No", Data: ConfirmToken(transfer.ID, false)},
			}},
		},
	}
	r.sessions.Clear(user.ID)
	return out, nil
}

func (r *Router) confirmTransfer(ctx context.Context, user models.User, transferID int64, decision string) ([]Outbound, error) {
	transfer, err := r.ledger.GetTransfer(ctx, transferID)
	if err != nil {
		if errors.Is(err, services.ErrTransferNotFound) {
			return []Outbound{r.reply(user.ID, "Transfer not found.")}, nil
		}
		return nil, err
	}
	if transfer.RecipientID != user.ID {
		return []Outbound{r.reply(user.ID, "This confirmation is not for you.")}, nil
	}
	if _, err := r.ledger.ConfirmTransfer(ctx, transferID, decision); err != nil {
		if errors.Is(err, services.ErrTransferFinal) {
			return []Outbound{r.reply(user.ID, "This transfer has already been resolved.")}, nil
		}
		return nil, err
	}
	if decision == models.TransferConfirmed {
		return []Outbound{r.reply(user.ID, "You confirmed the transfer.")}, nil
	}
	return []Outbound{r.reply(user.ID, "You declined the transfer.")}, nil
}

func (r *Router) listReceivable(ctx context.Context, user models.User) ([]Outbound, error) {
	if user.Role != models.RoleReceiver {
		return []Outbound{r.reply(user.ID, "Only receivers can collect transfers.")}, nil
	}
	transfers, err := r.ledger.PendingForReceivers(ctx)
	if err != nil {
		return nil, err
	}
	if len(transfers) == 0 {
		return []Outbound{r.reply(user.ID, "No transfers are available to receive.")}, nil
	}
	rows := make([][]Button, 0, len(transfers))
	for _, t := range transfers {
		sender := "unknown sender"
		if t.SenderLogin != nil && *t.SenderLogin != "" {
			sender = *t.SenderLogin
		}
		label := fmt.Sprintf("%s from %s", formatAmount(t.RemainingMinor), sender)
		rows = append(rows, []Button{{Text: label, Data: ReceiveTransferToken(t.ID)}})
	}
	return []Outbound{{
		ChatID: user.ID,
		Text:   "Choose a transfer to receive:",
		Inline: rows,
	}}, nil
}

func (r *Router) startReceiveFlow(ctx context.Context, user models.User, transferID int64) ([]Outbound, error) {
	if user.Role != models.RoleReceiver {
		return []Outbound{r.reply(user.ID, "Only receivers can collect transfers.")}, nil
	}
	transfer, err := r.ledger.GetTransfer(ctx, transferID)
	if err != nil {
		if errors.Is(err, services.ErrTransferNotFound) {
			return []Outbound{r.reply(user.ID, "Transfer not found or already fully received.")}, nil
		}
		return nil, err
	}
	if transfer.Status != models.TransferConfirmed || transfer.RemainingMinor <= 0 {
		return []Outbound{r.reply(user.ID, "Transfer not found or already fully received.")}, nil
	}
	r.enter(user.ID, session.ExpectSelectingTransaction, session.Patch{TransferID: session.Int64(transferID)})
	return []Outbound{r.reply(user.ID, fmt.Sprintf("Enter an amount up to %s:", formatAmount(transfer.RemainingMinor)))}, nil
}

func (r *Router) selectReceiveAmount(ctx context.Context, user models.User, s session.Session, text string) ([]Outbound, error) {
	amount, err := money.ParseMinor(text)
	if err != nil || amount <= 0 {
		return []Outbound{r.reply(user.ID, "Enter a valid amount.")}, nil
	}
	transfer, err := r.ledger.GetTransfer(ctx, s.TransferID)
	if err != nil {
		if errors.Is(err, services.ErrTransferNotFound) {
			r.sessions.Clear(user.ID)
			return []Outbound{r.reply(user.ID, "Transfer is no longer available.")}, nil
		}
		return nil, err
	}
	if amount > transfer.RemainingMinor {
		return []Outbound{r.reply(user.ID, fmt.Sprintf("Enter an amount up to %s.", formatAmount(transfer.RemainingMinor)))}, nil
	}
	r.sessions.SetExpectation(user.ID, session.ExpectConfirmReceiving, session.Patch{AmountMinor: session.Int64(amount)})
	return []Outbound{r.reply(user.ID, fmt.Sprintf("Confirming receipt of %s from transfer #%d. Send the same amount again to confirm.", formatAmount(amount), s.TransferID))}, nil
}

func (r *Router) confirmReceiveAmount(ctx context.Context, user models.User, s session.Session, text string) ([]Outbound, error) {
	amount, err := money.ParseMinor(text)
	if err != nil || amount != s.AmountMinor {
		return []Outbound{r.reply(user.ID, "Amount does not match. Try again.")}, nil
	}
	transfer, err := r.ledger.Receive(ctx, s.TransferID, amount, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientRemaining):
			r.sessions.Clear(user.ID)
			return []Outbound{r.reply(user.ID, "The transfer does not have that much remaining.")}, nil
		case errors.Is(err, services.ErrTransferNotFound), errors.Is(err, services.ErrTransferNotOpen):
			r.sessions.Clear(user.ID)
			return []Outbound{r.reply(user.ID, "Transfer is no longer available.")}, nil
		case errors.Is(err, services.ErrAmountNotPositive):
			return []Outbound{r.reply(user.ID, "Enter a valid amount.")}, nil
		}
		return nil, err
	}
	out := []Outbound{
		r.reply(user.ID, fmt.Sprintf("You received %s.", formatAmount(amount))),
		{
			ChatID: transfer.SenderID,
			Text:   fmt.Sprintf("%s was collected from your transfer #%d. Remaining: %s.", formatAmount(amount), transfer.ID, formatAmount(transfer.RemainingMinor)),
		},
	}
	r.sessions.Clear(user.ID)
	return out, nil
}

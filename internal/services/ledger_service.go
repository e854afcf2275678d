package services

import (
	"context"
	"database/sql"
	"errors"

	"chatpay/internal/db"
	"chatpay/internal/models"
	"chatpay/internal/money"
	"chatpay/internal/store"
	"chatpay/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrAmountNotPositive     = errors.New("amount must be positive")
	ErrMissingParty          = errors.New("missing sender or recipient")
	ErrTransferNotFound      = errors.New("transfer not found")
	ErrTransferFinal         = errors.New("transfer already in a terminal status")
	ErrTransferNotOpen       = errors.New("transfer not open for receiving")
	ErrInsufficientRemaining = errors.New("amount exceeds remaining")
	ErrInvalidDecision       = errors.New("invalid confirmation decision")
)

type TransferStore interface {
	Create(ctx context.Context, tx store.Tx, senderID, recipientID, amountMinor int64) (models.Transfer, error)
	GetByID(ctx context.Context, id int64) (models.Transfer, error)
	SetStatus(ctx context.Context, tx store.Tx, id int64, status string) (models.Transfer, error)
	ApplyReceipt(ctx context.Context, tx store.Tx, id, amountMinor int64) (models.Transfer, error)
	ListConfirmedWithSender(ctx context.Context) ([]store.TransferWithParties, error)
	ListAllWithParties(ctx context.Context) ([]store.TransferWithParties, error)
}

type ReceiptStore interface {
	Insert(ctx context.Context, tx store.Execer, input store.ReceiptInput) error
}

type PartyLookup interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
}

type EventFeed interface {
	BroadcastTransfer(update websocket.TransferUpdate)
}

type LedgerService struct {
	txRunner  db.TxRunner
	transfers TransferStore
	receipts  ReceiptStore
	parties   PartyLookup
	feed      EventFeed
}

func NewLedgerService(txRunner db.TxRunner, transfers TransferStore, receipts ReceiptStore, parties PartyLookup, feed EventFeed) *LedgerService {
	return &LedgerService{
		txRunner:  txRunner,
		transfers: transfers,
		receipts:  receipts,
		parties:   parties,
		feed:      feed,
	}
}

// CreateTransfer persists a pending transfer with the full amount remaining.
func (s *LedgerService) CreateTransfer(ctx context.Context, senderID, recipientID, amountMinor int64) (models.Transfer, error) {
	if amountMinor <= 0 {
		return models.Transfer{}, ErrInvalidAmount
	}
	if senderID == 0 || recipientID == 0 {
		return models.Transfer{}, ErrMissingParty
	}
	if _, err := s.parties.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transfer{}, ErrMissingParty
		}
		return models.Transfer{}, err
	}
	var transfer models.Transfer
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		created, err := s.transfers.Create(ctx, tx, senderID, recipientID, amountMinor)
		if err != nil {
			return err
		}
		transfer = created
		return nil
	})
	if err != nil {
		return models.Transfer{}, err
	}
	s.broadcast(transfer, "created")
	return transfer, nil
}

// ConfirmTransfer moves a pending transfer to confirmed or canceled.
// Repeating the same decision is a no-op success; any other transition out
// of a terminal status fails with ErrTransferFinal.
func (s *LedgerService) ConfirmTransfer(ctx context.Context, transferID int64, decision string) (models.Transfer, error) {
	if decision != models.TransferConfirmed && decision != models.TransferCanceled {
		return models.Transfer{}, ErrInvalidDecision
	}
	var transfer models.Transfer
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		updated, err := s.transfers.SetStatus(ctx, tx, transferID, decision)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				if _, err := s.transfers.GetByID(ctx, transferID); err != nil {
					if errors.Is(err, sql.ErrNoRows) {
						return ErrTransferNotFound
					}
					return err
				}
				return ErrTransferFinal
			}
			return err
		}
		transfer = updated
		return nil
	})
	if err != nil {
		return models.Transfer{}, err
	}
	s.broadcast(transfer, decision)
	return transfer, nil
}

// Receive settles part of a confirmed transfer. The decrement and the
// receipt append run in one transaction so the sum invariant holds under
// crashes and concurrent receives.
func (s *LedgerService) Receive(ctx context.Context, transferID, amountMinor, receiverID int64) (models.Transfer, error) {
	if amountMinor <= 0 {
		return models.Transfer{}, ErrAmountNotPositive
	}
	if receiverID == 0 {
		return models.Transfer{}, ErrMissingParty
	}
	var transfer models.Transfer
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		updated, err := s.transfers.ApplyReceipt(ctx, tx, transferID, amountMinor)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return s.classifyReceiveFailure(ctx, transferID, amountMinor)
			}
			return err
		}
		if err := s.receipts.Insert(ctx, tx, store.ReceiptInput{
			ID:          uuid.NewString(),
			TransferID:  transferID,
			AmountMinor: amountMinor,
			ReceiverID:  receiverID,
		}); err != nil {
			return err
		}
		transfer = updated
		return nil
	})
	if err != nil {
		return models.Transfer{}, err
	}
	s.broadcast(transfer, "receipt")
	return transfer, nil
}

// classifyReceiveFailure explains why the conditional update matched no row.
func (s *LedgerService) classifyReceiveFailure(ctx context.Context, transferID, amountMinor int64) error {
	transfer, err := s.transfers.GetByID(ctx, transferID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTransferNotFound
		}
		return err
	}
	if transfer.Status != models.TransferConfirmed {
		return ErrTransferNotOpen
	}
	if transfer.RemainingMinor < amountMinor {
		return ErrInsufficientRemaining
	}
	return ErrTransferNotFound
}

// PendingForReceivers lists confirmed transfers newest first, with sender
// logins joined for display.
func (s *LedgerService) PendingForReceivers(ctx context.Context) ([]store.TransferWithParties, error) {
	return s.transfers.ListConfirmedWithSender(ctx)
}

// ListAllTransfers is the export read path.
func (s *LedgerService) ListAllTransfers(ctx context.Context) ([]store.TransferWithParties, error) {
	return s.transfers.ListAllWithParties(ctx)
}

func (s *LedgerService) GetTransfer(ctx context.Context, transferID int64) (models.Transfer, error) {
	transfer, err := s.transfers.GetByID(ctx, transferID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transfer{}, ErrTransferNotFound
		}
		return models.Transfer{}, err
	}
	return transfer, nil
}

func (s *LedgerService) broadcast(transfer models.Transfer, kind string) {
	if s.feed == nil {
		return
	}
	s.feed.BroadcastTransfer(websocket.TransferUpdate{
		Kind:        kind,
		TransferID:  transfer.ID,
		SenderID:    transfer.SenderID,
		RecipientID: transfer.RecipientID,
		Amount:      money.FormatMinor(transfer.AmountMinor),
		Remaining:   money.FormatMinor(transfer.RemainingMinor),
		Status:      transfer.Status,
	})
}

package store

import (
	"context"

	"chatpay/internal/models"
)

type ReceiptStore struct {
	db DB
}

func NewReceiptStore(db DB) *ReceiptStore {
	return &ReceiptStore{db: db}
}

type ReceiptInput struct {
	ID          string
	TransferID  int64
	AmountMinor int64
	ReceiverID  int64
}

// Insert appends one audit entry. Receipts are append-only and written in
// the same transaction as the remaining-amount decrement.
func (s *ReceiptStore) Insert(ctx context.Context, tx Execer, input ReceiptInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO receipts (id, transfer_id, amount_minor, receiver_id)
		VALUES ($1, $2, $3, $4)
	`, input.ID, input.TransferID, input.AmountMinor, input.ReceiverID)
	return err
}

func (s *ReceiptStore) ListByTransfer(ctx context.Context, transferID int64) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := s.db.SelectContext(ctx, &receipts, `
		SELECT id, transfer_id, amount_minor, receiver_id, created_at
		FROM receipts
		WHERE transfer_id = $1
		ORDER BY created_at DESC
	`, transferID)
	return receipts, err
}

func (s *ReceiptStore) SumByTransfer(ctx context.Context, transferID int64) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount_minor), 0)
		FROM receipts
		WHERE transfer_id = $1
	`, transferID)
	return sum, err
}

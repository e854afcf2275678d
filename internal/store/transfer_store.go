package store

import (
	"context"
	"time"

	"chatpay/internal/models"
)

type TransferStore struct {
	db DB
}

func NewTransferStore(db DB) *TransferStore {
	return &TransferStore{db: db}
}

// TransferWithParties carries sender/recipient logins for display and export.
type TransferWithParties struct {
	models.Transfer
	SenderLogin    *string `db:"sender_login"`
	RecipientLogin *string `db:"recipient_login"`
}

type StatsRow struct {
	Count           int64      `db:"count"`
	TotalMinor      int64      `db:"total_minor"`
	LastAmountMinor *int64     `db:"last_amount_minor"`
	LastAt          *time.Time `db:"last_at"`
}

const transferColumns = `id, sender_id, recipient_id, amount_minor, remaining_minor, status, created_at, updated_at`

func (s *TransferStore) Create(ctx context.Context, tx Tx, senderID, recipientID, amountMinor int64) (models.Transfer, error) {
	var transfer models.Transfer
	err := tx.GetContext(ctx, &transfer, `
		INSERT INTO transfers (sender_id, recipient_id, amount_minor, remaining_minor, status)
		VALUES ($1, $2, $3, $3, 'pending')
		RETURNING `+transferColumns+`
	`, senderID, recipientID, amountMinor)
	return transfer, err
}

func (s *TransferStore) GetByID(ctx context.Context, id int64) (models.Transfer, error) {
	var transfer models.Transfer
	err := s.db.GetContext(ctx, &transfer, `
		SELECT `+transferColumns+` FROM transfers WHERE id = $1
	`, id)
	return transfer, err
}

// SetStatus flips a pending transfer to the given terminal decision and
// returns the updated row, so callers inside a transaction never re-read
// through the pool. The status guard makes re-sending the same decision a
// no-op win; any other transition out of a terminal status matches no row
// and surfaces as sql.ErrNoRows.
func (s *TransferStore) SetStatus(ctx context.Context, tx Tx, id int64, status string) (models.Transfer, error) {
	var transfer models.Transfer
	err := tx.GetContext(ctx, &transfer, `
		UPDATE transfers
		SET status = $1, updated_at = now()
		WHERE id = $2 AND (status = 'pending' OR status = $1)
		RETURNING `+transferColumns+`
	`, status, id)
	return transfer, err
}

// ApplyReceipt atomically decrements the remaining amount. The conditional
// WHERE clause is what makes two racing receives unable to overdraw the
// transfer: at most one of them passes the remaining_minor >= $1 check.
func (s *TransferStore) ApplyReceipt(ctx context.Context, tx Tx, id, amountMinor int64) (models.Transfer, error) {
	var transfer models.Transfer
	err := tx.GetContext(ctx, &transfer, `
		UPDATE transfers
		SET remaining_minor = remaining_minor - $1,
		    status = CASE WHEN remaining_minor - $1 = 0 THEN 'received' ELSE status END,
		    updated_at = now()
		WHERE id = $2 AND status = 'confirmed' AND remaining_minor >= $1
		RETURNING `+transferColumns+`
	`, amountMinor, id)
	return transfer, err
}

func (s *TransferStore) ListConfirmedWithSender(ctx context.Context) ([]TransferWithParties, error) {
	var transfers []TransferWithParties
	err := s.db.SelectContext(ctx, &transfers, `
		SELECT t.id, t.sender_id, t.recipient_id, t.amount_minor, t.remaining_minor, t.status,
		       t.created_at, t.updated_at, su.login AS sender_login, ru.login AS recipient_login
		FROM transfers t
		LEFT JOIN users su ON su.id = t.sender_id
		LEFT JOIN users ru ON ru.id = t.recipient_id
		WHERE t.status = 'confirmed'
		ORDER BY t.created_at DESC
	`)
	return transfers, err
}

func (s *TransferStore) ListAllWithParties(ctx context.Context) ([]TransferWithParties, error) {
	var transfers []TransferWithParties
	err := s.db.SelectContext(ctx, &transfers, `
		SELECT t.id, t.sender_id, t.recipient_id, t.amount_minor, t.remaining_minor, t.status,
		       t.created_at, t.updated_at, su.login AS sender_login, ru.login AS recipient_login
		FROM transfers t
		LEFT JOIN users su ON su.id = t.sender_id
		LEFT JOIN users ru ON ru.id = t.recipient_id
		ORDER BY t.created_at DESC
	`)
	return transfers, err
}

func (s *TransferStore) StatsForSender(ctx context.Context, senderID int64) (StatsRow, error) {
	var row StatsRow
	err := s.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS count,
		       COALESCE(SUM(amount_minor), 0) AS total_minor,
		       (SELECT amount_minor FROM transfers WHERE sender_id = $1 ORDER BY created_at DESC LIMIT 1) AS last_amount_minor,
		       MAX(created_at) AS last_at
		FROM transfers
		WHERE sender_id = $1
	`, senderID)
	return row, err
}

func (s *TransferStore) StatsForRecipient(ctx context.Context, recipientID int64) (StatsRow, error) {
	var row StatsRow
	err := s.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS count,
		       COALESCE(SUM(amount_minor), 0) AS total_minor,
		       (SELECT amount_minor FROM transfers WHERE recipient_id = $1 ORDER BY created_at DESC LIMIT 1) AS last_amount_minor,
		       MAX(created_at) AS last_at
		FROM transfers
		WHERE recipient_id = $1
	`, recipientID)
	return row, err
}

func (s *TransferStore) StatsGlobal(ctx context.Context) (StatsRow, error) {
	var row StatsRow
	err := s.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS count,
		       COALESCE(SUM(amount_minor), 0) AS total_minor,
		       (SELECT amount_minor FROM transfers WHERE status = 'confirmed' ORDER BY created_at DESC LIMIT 1) AS last_amount_minor,
		       MAX(created_at) AS last_at
		FROM transfers
		WHERE status = 'confirmed'
	`)
	return row, err
}

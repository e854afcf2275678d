package models

import "time"

const (
	RoleUser     = "USER"
	RoleSender   = "SENDER"
	RoleReceiver = "RECEIVER"
	RoleAdmin    = "ADMIN"
)

const (
	TransferPending   = "pending"
	TransferConfirmed = "confirmed"
	TransferCanceled  = "canceled"
	TransferReceived  = "received"
)

// User is keyed by the externally issued chat account id.
type User struct {
	ID         int64     `db:"id" json:"id"`
	Login      *string   `db:"login" json:"login,omitempty"`
	Handle     *string   `db:"handle" json:"handle,omitempty"`
	FullName   string    `db:"full_name" json:"full_name"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Language   *string   `db:"language" json:"language,omitempty"`
	IsPremium  bool      `db:"is_premium" json:"is_premium"`
	IsBot      bool      `db:"is_bot" json:"is_bot"`
	Registered bool      `db:"registered" json:"registered"`
	Role       string    `db:"role" json:"role"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Profile is the identity snapshot delivered with every inbound chat event.
type Profile struct {
	ID        int64
	Handle    string
	FirstName string
	LastName  string
	Language  string
	IsPremium bool
	IsBot     bool
}

// Transfer amounts are int64 minor units.
type Transfer struct {
	ID             int64     `db:"id" json:"id"`
	SenderID       int64     `db:"sender_id" json:"sender_id"`
	RecipientID    int64     `db:"recipient_id" json:"recipient_id"`
	AmountMinor    int64     `db:"amount_minor" json:"amount_minor"`
	RemainingMinor int64     `db:"remaining_minor" json:"remaining_minor"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Receipt is one audited partial or full settlement against a Transfer.
type Receipt struct {
	ID          string    `db:"id" json:"id"`
	TransferID  int64     `db:"transfer_id" json:"transfer_id"`
	AmountMinor int64     `db:"amount_minor" json:"amount_minor"`
	ReceiverID  int64     `db:"receiver_id" json:"receiver_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

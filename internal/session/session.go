package session

import "time"

// Expectation tags what kind of input the router will interpret the next
// free-text or contact event as.
type Expectation int

const (
	ExpectNone Expectation = iota
	ExpectLogin
	ExpectPhone
	ExpectSearchUser
	ExpectConfirmAmount
	ExpectSelectingTransaction
	ExpectConfirmReceiving
)

func (e Expectation) String() string {
	switch e {
	case ExpectNone:
		return "none"
	case ExpectLogin:
		return "login"
	case ExpectPhone:
		return "phone"
	case ExpectSearchUser:
		return "search_user"
	case ExpectConfirmAmount:
		return "confirm_amount"
	case ExpectSelectingTransaction:
		return "selecting_transaction"
	case ExpectConfirmReceiving:
		return "confirm_receiving"
	}
	return "unknown"
}

// Session is per-account, ephemeral and never persisted. Zero values mean
// "unset" for all pending payload fields.
type Session struct {
	AccountID    int64
	Expectation  Expectation
	Counterparty int64
	AmountMinor  int64
	TransferID   int64
	Registering  bool
	UpdatedAt    time.Time
}

// Patch carries optional payload updates; nil fields are left untouched.
type Patch struct {
	Counterparty *int64
	AmountMinor  *int64
	TransferID   *int64
	Registering  *bool
}

func Int64(value int64) *int64 {
	return &value
}

func Bool(value bool) *bool {
	return &value
}

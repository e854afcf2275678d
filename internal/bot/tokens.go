package bot

import (
	"strconv"
	"strings"
)

// Main-menu button labels. Reply keyboards echo the label back as text, so
// these double as dispatch keys.
const (
	BtnRegister     = "Register"
	BtnStats        = "Stats"
	BtnSearch       = "Search"
	BtnReceive      = "Receive money"
	BtnSettings     = "Settings"
	BtnShareContact = "Share my number"
)

// Inline callback tokens.
const (
	tokenChangeLogin = "change_login"
	tokenChangePhone = "change_phone"
	prefixSendMoney  = "send_money_"
	prefixReceiveTx  = "receive_tx_"
	prefixConfirmYes = "confirm_yes_"
	prefixConfirmNo  = "confirm_no_"
)

var reservedInputs = map[string]struct{}{
	BtnRegister:     {},
	BtnStats:        {},
	BtnSearch:       {},
	BtnReceive:      {},
	BtnSettings:     {},
	BtnShareContact: {},
}

func isReservedInput(text string) bool {
	if strings.HasPrefix(text, "/") {
		return true
	}
	_, ok := reservedInputs[text]
	return ok
}

func SendMoneyToken(accountID int64) string {
	return prefixSendMoney + strconv.FormatInt(accountID, 10)
}

func ReceiveTransferToken(transferID int64) string {
	return prefixReceiveTx + strconv.FormatInt(transferID, 10)
}

func ConfirmToken(transferID int64, accept bool) string {
	if accept {
		return prefixConfirmYes + strconv.FormatInt(transferID, 10)
	}
	return prefixConfirmNo + strconv.FormatInt(transferID, 10)
}

func cutID(token, prefix string) (int64, bool) {
	raw, ok := strings.CutPrefix(token, prefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

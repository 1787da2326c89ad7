package dto

// Reply codes form a closed set; the requesting side switches on them, so
// they are wire-stable.
const (
	CodeWithdrawOK   = "TRANSFER2002"
	CodeDepositOK    = "TRANSFER2003"
	CodeCompensateOK = "TRANSFER2004"

	CodeBadRequest          = "COMMON400"
	CodeRequestTimeout      = "COMMON408"
	CodeInternalError       = "COMMON500"
	CodeAccountNotFound     = "ACNT4001"
	CodeInsufficientBalance = "TRANSFER4001"
	CodeInvalidAmount       = "TRANSFER4002"
	CodeDuplicateTxn        = "TRANSFER4003"
	CodeMissingWithdraw     = "TRANSFER4004"
	CodeTxnNotFound         = "TRANSFER4005"
	CodeAlreadyCompensated  = "TRANSFER4006"
	CodeCompensationFailed  = "TRANSFER4007"
)

var replyMessages = map[string]string{
	CodeWithdrawOK:   "withdraw transfer completed",
	CodeDepositOK:    "deposit transfer completed",
	CodeCompensateOK: "compensation completed",

	CodeBadRequest:          "malformed transfer request",
	CodeRequestTimeout:      "request expired before processing",
	CodeInternalError:       "internal server error, contact the operator",
	CodeAccountNotFound:     "account number does not exist",
	CodeInsufficientBalance: "account balance is insufficient",
	CodeInvalidAmount:       "transfer amount must be positive",
	CodeDuplicateTxn:        "transaction was already processed",
	CodeMissingWithdraw:     "no withdraw recorded for this transaction",
	CodeTxnNotFound:         "transaction does not exist",
	CodeAlreadyCompensated:  "transaction was already compensated",
	CodeCompensationFailed:  "compensation failed, queued for recovery",
}

// SuccessReply builds a success reply for a known code.
func SuccessReply(code string) Reply {
	return Reply{IsSuccess: true, Code: code, Message: replyMessages[code]}
}

// FailureReply builds a failure reply for a known code.
func FailureReply(code string) Reply {
	return Reply{IsSuccess: false, Code: code, Message: replyMessages[code]}
}

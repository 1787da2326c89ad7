package domain

import "fmt"

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountActive  AccountStatus = "ACTIVE"
	AccountDormant AccountStatus = "DORMANT"
)

// ParseAccountStatus validates a wire code and rejects anything outside the
// closed set.
func ParseAccountStatus(code string) (AccountStatus, error) {
	switch AccountStatus(code) {
	case AccountActive, AccountDormant:
		return AccountStatus(code), nil
	default:
		return "", fmt.Errorf("unknown account status %q", code)
	}
}

// Display returns human-readable text for the status.
func (s AccountStatus) Display() string {
	switch s {
	case AccountActive:
		return "active"
	case AccountDormant:
		return "dormant"
	default:
		return string(s)
	}
}

// CurrencyCode identifies the currency of a balance or transfer amount.
// Amounts are always integer minor units of the given currency.
type CurrencyCode string

const (
	CurrencyWon    CurrencyCode = "WON"
	CurrencyDollar CurrencyCode = "DOLLAR"
)

// ParseCurrencyCode validates a wire code and rejects unknown currencies.
func ParseCurrencyCode(code string) (CurrencyCode, error) {
	switch CurrencyCode(code) {
	case CurrencyWon, CurrencyDollar:
		return CurrencyCode(code), nil
	default:
		return "", fmt.Errorf("unknown currency code %q", code)
	}
}

// Display returns human-readable text for the currency.
func (c CurrencyCode) Display() string {
	switch c {
	case CurrencyWon:
		return "Korean won"
	case CurrencyDollar:
		return "US dollar"
	default:
		return string(c)
	}
}

// BankCode identifies the institution holding an account.
type BankCode string

const (
	BankSsok       BankCode = "SSOK_BANK"
	BankKakao      BankCode = "KAKAO_BANK"
	BankKookmin    BankCode = "KOOKMIN_BANK"
	BankShinhan    BankCode = "SHINHAN_BANK"
	BankWoori      BankCode = "WOORI_BANK"
	BankHana       BankCode = "HANA_BANK"
	BankNonghyup   BankCode = "NONGHYUP_BANK"
	BankIndustrial BankCode = "INDUSTRIAL_BANK"
	BankK          BankCode = "K_BANK"
	BankToss       BankCode = "TOSS_BANK"
)

var bankDisplay = map[BankCode]string{
	BankSsok:       "SSOK Bank",
	BankKakao:      "Kakao Bank",
	BankKookmin:    "KB Kookmin Bank",
	BankShinhan:    "Shinhan Bank",
	BankWoori:      "Woori Bank",
	BankHana:       "KEB Hana Bank",
	BankNonghyup:   "NH Nonghyup Bank",
	BankIndustrial: "IBK Industrial Bank",
	BankK:          "K Bank",
	BankToss:       "Toss Bank",
}

// ParseBankCode validates a wire code and rejects unknown banks.
func ParseBankCode(code string) (BankCode, error) {
	if _, ok := bankDisplay[BankCode(code)]; !ok {
		return "", fmt.Errorf("unknown bank code %q", code)
	}
	return BankCode(code), nil
}

// Display returns human-readable text for the bank.
func (b BankCode) Display() string {
	if name, ok := bankDisplay[b]; ok {
		return name
	}
	return string(b)
}

package model

// Credentials are the blockchain credentials presented by the caller.
type Credentials struct {
	Token       string
	UserAddress string // Optional in mock mode
}

// Identity is the result of a successful credential verification.
type Identity struct {
	Address string
	Token   string
}

// CreditReceipt describes a usage credit deduction.
type CreditReceipt struct {
	Success          bool
	TxHash           string
	CreditsRemaining int64
	Error            string
}

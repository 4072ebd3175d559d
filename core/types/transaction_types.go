package types

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionTypeDeposit         TransactionType = "DEPOSIT"
	TransactionTypeWithdrawRequest TransactionType = "WITHDRAW_REQUEST"
	TransactionTypeWithdrawClaim   TransactionType = "WITHDRAW_CLAIM"
	TransactionTypePrizeWin        TransactionType = "PRIZE_WIN"
	TransactionTypeSquadBonus      TransactionType = "SQUAD_BONUS"
)

// TransactionStatus is the backend's view of a submitted transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusConfirmed TransactionStatus = "CONFIRMED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is an immutable server-owned ledger record.
type Transaction struct {
	ID        string            `json:"id"`
	TxHash    string            `json:"txHash"`
	Type      TransactionType   `json:"type"`
	Amount    string            `json:"amount"`
	Status    TransactionStatus `json:"status"`
	CreatedAt string            `json:"createdAt"`
}

// WithdrawalStatus tracks a withdrawal through the unbonding period.
// Transitions PENDING -> UNBONDING -> AVAILABLE -> CLAIMED are driven by
// the backend's 14-day unbonding rule; the client only reads.
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "PENDING"
	WithdrawalStatusUnbonding WithdrawalStatus = "UNBONDING"
	WithdrawalStatusAvailable WithdrawalStatus = "AVAILABLE"
	WithdrawalStatusClaimed   WithdrawalStatus = "CLAIMED"
	WithdrawalStatusFailed    WithdrawalStatus = "FAILED"
)

// Withdrawal is a server-owned unbonding record.
type Withdrawal struct {
	ID          string           `json:"id"`
	Amount      string           `json:"amount"`
	Status      WithdrawalStatus `json:"status"`
	RequestedAt string           `json:"requestedAt"`
	AvailableAt string           `json:"availableAt"`
	ClaimedAt   *string          `json:"claimedAt"`
}

// DeployData is an unsigned deploy prepared by the backend, ready to be
// signed by the wallet extension.
type DeployData struct {
	Deploy        map[string]any `json:"deploy"`
	Amount        string         `json:"amount"`
	WalletAddress string         `json:"walletAddress"`
}

// WithdrawPrepareData extends DeployData with the unbonding terms the
// withdrawal will be subject to.
type WithdrawPrepareData struct {
	DeployData
	AvailableAt   string `json:"availableAt"`
	UnbondingDays int    `json:"unbondingDays"`
}

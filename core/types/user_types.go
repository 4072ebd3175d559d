package types

// WinChance summarizes a user's odds at the next draw.
type WinChance struct {
	Tickets string `json:"tickets"`
	Total   string `json:"total"`
	Odds    string `json:"odds"`
}

// User is the server-owned account record, mirrored read-only on the
// client. Amounts are mote strings; mutation happens only through the
// transaction endpoints.
type User struct {
	ID              string     `json:"id"`
	WalletAddress   string     `json:"walletAddress"`
	DepositedAmount string     `json:"depositedAmount"`
	TicketBalance   string     `json:"ticketBalance"`
	PendingWithdraw string     `json:"pendingWithdraw"`
	TotalWinnings   string     `json:"totalWinnings"`
	SquadID         *string    `json:"squadId"`
	Squad           *Squad     `json:"squad"`
	WinChance       *WinChance `json:"winChance"`
}

// Prize is a past win credited to a user.
type Prize struct {
	ID              string `json:"id"`
	Round           int    `json:"round"`
	Amount          string `json:"amount"`
	FormattedAmount string `json:"formattedAmount"`
	Type            string `json:"type"`
	WonAt           string `json:"wonAt"`
}

// CreateUserInput registers a wallet with the backend. The call is an
// idempotent upsert keyed by wallet address.
type CreateUserInput struct {
	WalletAddress string `json:"walletAddress" validate:"required"`
	PublicKey     string `json:"publicKey,omitempty"`
}

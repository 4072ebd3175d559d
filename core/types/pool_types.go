package types

// FormattedStats carries backend-rendered display strings for pool totals.
type FormattedStats struct {
	TotalDeposited         string `json:"totalDeposited"`
	AccumulatedYield       string `json:"accumulatedYield"`
	TotalPrizesDistributed string `json:"totalPrizesDistributed"`
	TimeUntilDraw          string `json:"timeUntilDraw"`
}

// PoolStats is the aggregate snapshot of the whole pool. All amounts are
// mote strings.
type PoolStats struct {
	TotalDeposited         string         `json:"totalDeposited"`
	TotalTickets           string         `json:"totalTickets"`
	TotalParticipants      int            `json:"totalParticipants"`
	TotalSquads            int            `json:"totalSquads"`
	CurrentRound           int            `json:"currentRound"`
	AccumulatedYield       string         `json:"accumulatedYield"`
	TotalPrizesDistributed string         `json:"totalPrizesDistributed"`
	NextDrawTime           string         `json:"nextDrawTime"`
	Formatted              FormattedStats `json:"formatted"`
}

// RoundCountdown is the backend's countdown breakdown for the next draw.
// Total is in milliseconds.
type RoundCountdown struct {
	Total   int64 `json:"total"`
	Days    int   `json:"days"`
	Hours   int   `json:"hours"`
	Minutes int   `json:"minutes"`
	Seconds int   `json:"seconds"`
}

// CurrentRound describes the in-progress draw round.
type CurrentRound struct {
	Round            int            `json:"round"`
	EstimatedPrize   string         `json:"estimatedPrize"`
	FormattedPrize   string         `json:"formattedPrize"`
	TotalPool        string         `json:"totalPool"`
	FormattedPool    string         `json:"formattedPool"`
	ParticipantCount int            `json:"participantCount"`
	NextDrawTime     string         `json:"nextDrawTime"`
	Countdown        RoundCountdown `json:"countdown"`
}

// FormattedDraw carries backend-rendered display strings for a draw.
type FormattedDraw struct {
	PrizeAmount   string `json:"prizeAmount"`
	TotalPool     string `json:"totalPool"`
	WinnerAddress string `json:"winnerAddress"`
}

// Draw is a completed or scheduled draw round.
type Draw struct {
	ID               string        `json:"id"`
	Round            int           `json:"round"`
	TotalPool        string        `json:"totalPool"`
	PrizeAmount      string        `json:"prizeAmount"`
	WinnerAddress    *string       `json:"winnerAddress"`
	SquadBonus       string        `json:"squadBonus"`
	ParticipantCount int           `json:"participantCount"`
	Status           string        `json:"status"`
	ExecutedAt       *string       `json:"executedAt"`
	Formatted        FormattedDraw `json:"formatted"`
}

// Winner is one past draw winner.
type Winner struct {
	Round           int    `json:"round"`
	Address         string `json:"address"`
	FullAddress     string `json:"fullAddress"`
	Amount          string `json:"amount"`
	FormattedAmount string `json:"formattedAmount"`
	Date            string `json:"date"`
}

package types

import (
	"strings"

	"github.com/pkg/errors"
)

// SquadMaxMembers is the server-enforced member cap.
const SquadMaxMembers = 5

// SquadStatus filters squad listings by capacity.
type SquadStatus string

const (
	SquadStatusAll  SquadStatus = "all"
	SquadStatusOpen SquadStatus = "open"
	SquadStatusFull SquadStatus = "full"
)

// SquadMember links a user to a squad.
type SquadMember struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Role          int             `json:"role"`
	TicketsAtJoin string          `json:"ticketsAtJoin"`
	JoinedAt      string          `json:"joinedAt"`
	User          SquadMemberUser `json:"user"`
}

// SquadMemberUser is the user summary embedded in a member record.
type SquadMemberUser struct {
	WalletAddress string `json:"walletAddress"`
	TicketBalance string `json:"ticketBalance"`
}

// Squad is a user-formed bonus group. The server is the sole source of
// truth and enforces the member cap and single-admin invariant.
type Squad struct {
	ID           string        `json:"id"`
	OnChainID    int           `json:"onChainId"`
	Name         string        `json:"name"`
	InviteCode   string        `json:"inviteCode"`
	MemberCount  int           `json:"memberCount"`
	TotalWins    int           `json:"totalWins"`
	TotalWon     string        `json:"totalWon"`
	Rank         int           `json:"rank"`
	AdminID      string        `json:"adminId"`
	IsActive     bool          `json:"isActive"`
	Status       SquadStatus   `json:"status"`
	SquadMembers []SquadMember `json:"squadMembers,omitempty"`
}

// CreateSquadInput names a new squad owned by the calling wallet.
type CreateSquadInput struct {
	WalletAddress string `json:"walletAddress" validate:"required"`
	Name          string `json:"name" validate:"required,min=3,max=32"`
}

// Validate checks the input before it is sent to the backend.
func (i *CreateSquadInput) Validate() error {
	if i.WalletAddress == "" {
		return errors.New("wallet address is required")
	}
	name := strings.TrimSpace(i.Name)
	if len(name) < 3 {
		return errors.New("squad name must be at least 3 characters")
	}
	if len(name) > 32 {
		return errors.New("squad name cannot exceed 32 characters")
	}
	return nil
}

// JoinSquadInput joins the squad behind an invite code. Codes are matched
// case-insensitively by the server; the client upper-cases before sending.
type JoinSquadInput struct {
	WalletAddress string `json:"walletAddress" validate:"required"`
	InviteCode    string `json:"inviteCode" validate:"required"`
}

// Validate checks the input before it is sent to the backend.
func (i *JoinSquadInput) Validate() error {
	if i.WalletAddress == "" {
		return errors.New("wallet address is required")
	}
	if strings.TrimSpace(i.InviteCode) == "" {
		return errors.New("invite code is required")
	}
	return nil
}

// ListSquadsInput pages through the public squad directory.
type ListSquadsInput struct {
	Page   int
	Limit  int
	Query  string
	Status SquadStatus
}

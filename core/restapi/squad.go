package restapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/caspool/sdk-go/core/types"
)

// SquadAPI reads and mutates squads.
type SquadAPI struct {
	client *Client
}

// LoadSquadAPI creates the squad resource group.
func LoadSquadAPI(client *Client) (*SquadAPI, error) {
	if client == nil {
		return nil, errors.New("client is required")
	}
	return &SquadAPI{client: client}, nil
}

// ListSquads pages through the public directory, optionally filtered by a
// name query and open/full status.
func (s *SquadAPI) ListSquads(ctx context.Context, input types.ListSquadsInput) ([]types.Squad, *types.Pagination, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 10
	}
	status := input.Status
	if status == "" {
		status = types.SquadStatusAll
	}

	var squads []types.Squad
	path := fmt.Sprintf("/squads?page=%d&limit=%d&query=%s&status=%s",
		page, limit, url.QueryEscape(input.Query), status)
	pagination, err := s.client.do(ctx, http.MethodGet, path, nil, &squads)
	if err != nil {
		return nil, nil, err
	}
	return squads, pagination, nil
}

// GetTopSquads fetches the leaderboard.
func (s *SquadAPI) GetTopSquads(ctx context.Context, limit int) ([]types.Squad, error) {
	if limit < 1 {
		limit = 10
	}
	var squads []types.Squad
	path := fmt.Sprintf("/squads/top?limit=%d", limit)
	if _, err := s.client.do(ctx, http.MethodGet, path, nil, &squads); err != nil {
		return nil, err
	}
	return squads, nil
}

// GetSquad fetches one squad with its member list.
func (s *SquadAPI) GetSquad(ctx context.Context, id string) (*types.Squad, error) {
	if id == "" {
		return nil, errors.New("squad id is required")
	}
	var squad types.Squad
	path := "/squads/" + url.PathEscape(id)
	if _, err := s.client.do(ctx, http.MethodGet, path, nil, &squad); err != nil {
		return nil, err
	}
	return &squad, nil
}

// GetSquadByInvite resolves an invite code to its squad. Codes are matched
// case-insensitively; the canonical wire form is upper case.
func (s *SquadAPI) GetSquadByInvite(ctx context.Context, code string) (*types.Squad, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errors.New("invite code is required")
	}
	var squad types.Squad
	path := "/squads/invite/" + url.PathEscape(code)
	if _, err := s.client.do(ctx, http.MethodGet, path, nil, &squad); err != nil {
		return nil, err
	}
	return &squad, nil
}

// CreateSquad creates a squad administered by the calling wallet.
func (s *SquadAPI) CreateSquad(ctx context.Context, input types.CreateSquadInput) (*types.Squad, error) {
	if err := input.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}
	var squad types.Squad
	if _, err := s.client.do(ctx, http.MethodPost, "/squads", input, &squad); err != nil {
		return nil, err
	}
	return &squad, nil
}

// JoinSquad joins the squad behind an invite code.
func (s *SquadAPI) JoinSquad(ctx context.Context, input types.JoinSquadInput) (*types.Squad, error) {
	if err := input.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}
	input.InviteCode = strings.ToUpper(strings.TrimSpace(input.InviteCode))
	var squad types.Squad
	if _, err := s.client.do(ctx, http.MethodPost, "/squads/join", input, &squad); err != nil {
		return nil, err
	}
	return &squad, nil
}

// LeaveSquad removes the calling wallet from its squad.
func (s *SquadAPI) LeaveSquad(ctx context.Context, walletAddress string) error {
	if walletAddress == "" {
		return errors.New("wallet address is required")
	}
	body := map[string]string{"walletAddress": walletAddress}
	_, err := s.client.do(ctx, http.MethodPost, "/squads/leave", body, nil)
	return err
}

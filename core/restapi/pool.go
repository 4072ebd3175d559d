package restapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/caspool/sdk-go/core/types"
)

// PoolAPI reads the pool-wide aggregate endpoints.
type PoolAPI struct {
	client *Client
}

// LoadPoolAPI creates the pool resource group.
func LoadPoolAPI(client *Client) (*PoolAPI, error) {
	if client == nil {
		return nil, errors.New("client is required")
	}
	return &PoolAPI{client: client}, nil
}

// GetStats fetches the aggregate pool snapshot.
func (p *PoolAPI) GetStats(ctx context.Context) (*types.PoolStats, error) {
	var stats types.PoolStats
	if _, err := p.client.do(ctx, http.MethodGet, "/pool/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetCurrentRound fetches the in-progress round with its countdown.
func (p *PoolAPI) GetCurrentRound(ctx context.Context) (*types.CurrentRound, error) {
	var round types.CurrentRound
	if _, err := p.client.do(ctx, http.MethodGet, "/pool/current-round", nil, &round); err != nil {
		return nil, err
	}
	return &round, nil
}

// GetDraws pages through past draws, newest first.
func (p *PoolAPI) GetDraws(ctx context.Context, page, limit int) ([]types.Draw, *types.Pagination, error) {
	var draws []types.Draw
	path := fmt.Sprintf("/pool/draws?page=%d&limit=%d", page, limit)
	pagination, err := p.client.do(ctx, http.MethodGet, path, nil, &draws)
	if err != nil {
		return nil, nil, err
	}
	return draws, pagination, nil
}

// GetDraw fetches a single draw by round number.
func (p *PoolAPI) GetDraw(ctx context.Context, round int) (*types.Draw, error) {
	var draw types.Draw
	path := fmt.Sprintf("/pool/draws/%d", round)
	if _, err := p.client.do(ctx, http.MethodGet, path, nil, &draw); err != nil {
		return nil, err
	}
	return &draw, nil
}

// GetWinners pages through past winners.
func (p *PoolAPI) GetWinners(ctx context.Context, page, limit int) ([]types.Winner, *types.Pagination, error) {
	var winners []types.Winner
	path := fmt.Sprintf("/pool/winners?page=%d&limit=%d", page, limit)
	pagination, err := p.client.do(ctx, http.MethodGet, path, nil, &winners)
	if err != nil {
		return nil, nil, err
	}
	return winners, pagination, nil
}

package restapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/caspool/sdk-go/core/types"
)

// UserAPI reads and registers user accounts.
type UserAPI struct {
	client *Client
}

// LoadUserAPI creates the user resource group.
func LoadUserAPI(client *Client) (*UserAPI, error) {
	if client == nil {
		return nil, errors.New("client is required")
	}
	return &UserAPI{client: client}, nil
}

// GetUser fetches the account keyed by wallet address.
func (u *UserAPI) GetUser(ctx context.Context, address string) (*types.User, error) {
	if address == "" {
		return nil, errors.New("wallet address is required")
	}
	var user types.User
	path := "/users/" + url.PathEscape(address)
	if _, err := u.client.do(ctx, http.MethodGet, path, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser registers a wallet with the backend. The backend treats this
// as an idempotent upsert keyed by wallet address.
func (u *UserAPI) CreateUser(ctx context.Context, input types.CreateUserInput) (*types.User, error) {
	if input.WalletAddress == "" {
		return nil, errors.New("wallet address is required")
	}
	var user types.User
	if _, err := u.client.do(ctx, http.MethodPost, "/users", input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetTransactions pages through a user's ledger entries.
func (u *UserAPI) GetTransactions(ctx context.Context, address string, page, limit int) ([]types.Transaction, *types.Pagination, error) {
	if address == "" {
		return nil, nil, errors.New("wallet address is required")
	}
	var txs []types.Transaction
	path := fmt.Sprintf("/users/%s/transactions?page=%d&limit=%d", url.PathEscape(address), page, limit)
	pagination, err := u.client.do(ctx, http.MethodGet, path, nil, &txs)
	if err != nil {
		return nil, nil, err
	}
	return txs, pagination, nil
}

// GetWithdrawals pages through a user's unbonding records.
func (u *UserAPI) GetWithdrawals(ctx context.Context, address string, page, limit int) ([]types.Withdrawal, *types.Pagination, error) {
	if address == "" {
		return nil, nil, errors.New("wallet address is required")
	}
	var withdrawals []types.Withdrawal
	path := fmt.Sprintf("/users/%s/withdrawals?page=%d&limit=%d", url.PathEscape(address), page, limit)
	pagination, err := u.client.do(ctx, http.MethodGet, path, nil, &withdrawals)
	if err != nil {
		return nil, nil, err
	}
	return withdrawals, pagination, nil
}

// GetPrizes fetches all prizes a user has won.
func (u *UserAPI) GetPrizes(ctx context.Context, address string) ([]types.Prize, error) {
	if address == "" {
		return nil, errors.New("wallet address is required")
	}
	var prizes []types.Prize
	path := fmt.Sprintf("/users/%s/prizes", url.PathEscape(address))
	if _, err := u.client.do(ctx, http.MethodGet, path, nil, &prizes); err != nil {
		return nil, err
	}
	return prizes, nil
}

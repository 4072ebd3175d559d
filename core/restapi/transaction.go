package restapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/caspool/sdk-go/core/types"
)

// TransactionAPI prepares, confirms and tracks signed deposits and
// withdrawals. Amounts are integer mote strings throughout.
type TransactionAPI struct {
	client *Client
}

// LoadTransactionAPI creates the transaction resource group.
func LoadTransactionAPI(client *Client) (*TransactionAPI, error) {
	if client == nil {
		return nil, errors.New("client is required")
	}
	return &TransactionAPI{client: client}, nil
}

// PrepareDeposit asks the backend for an unsigned deposit deploy.
func (t *TransactionAPI) PrepareDeposit(ctx context.Context, walletAddress, amount string) (*types.DeployData, error) {
	if walletAddress == "" {
		return nil, errors.New("wallet address is required")
	}
	if amount == "" {
		return nil, errors.New("amount is required")
	}
	body := map[string]string{
		"walletAddress": walletAddress,
		"amount":        amount,
		"txHash":        "",
	}
	var data types.DeployData
	if _, err := t.client.do(ctx, http.MethodPost, "/transactions/deposit/prepare", body, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ConfirmDeposit reports the broadcast hash of a signed deposit so the
// backend can credit tickets once it lands.
func (t *TransactionAPI) ConfirmDeposit(ctx context.Context, walletAddress, amount, txHash string) (*types.Transaction, error) {
	if walletAddress == "" {
		return nil, errors.New("wallet address is required")
	}
	if txHash == "" {
		return nil, errors.New("transaction hash is required")
	}
	body := map[string]string{
		"walletAddress": walletAddress,
		"amount":        amount,
		"txHash":        txHash,
	}
	var tx types.Transaction
	if _, err := t.client.do(ctx, http.MethodPost, "/transactions/deposit/confirm", body, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// PrepareWithdraw asks the backend for an unsigned withdrawal deploy plus
// the unbonding terms it will carry.
func (t *TransactionAPI) PrepareWithdraw(ctx context.Context, walletAddress, amount string) (*types.WithdrawPrepareData, error) {
	if walletAddress == "" {
		return nil, errors.New("wallet address is required")
	}
	if amount == "" {
		return nil, errors.New("amount is required")
	}
	body := map[string]string{
		"walletAddress": walletAddress,
		"amount":        amount,
	}
	var data types.WithdrawPrepareData
	if _, err := t.client.do(ctx, http.MethodPost, "/transactions/withdraw/prepare", body, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// RequestWithdraw opens an unbonding withdrawal for the amount.
func (t *TransactionAPI) RequestWithdraw(ctx context.Context, walletAddress, amount string) (*types.Withdrawal, error) {
	if walletAddress == "" {
		return nil, errors.New("wallet address is required")
	}
	if amount == "" {
		return nil, errors.New("amount is required")
	}
	body := map[string]string{
		"walletAddress": walletAddress,
		"amount":        amount,
	}
	var withdrawal types.Withdrawal
	if _, err := t.client.do(ctx, http.MethodPost, "/transactions/withdraw/request", body, &withdrawal); err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

// ClaimWithdraw claims a withdrawal whose unbonding period has elapsed.
func (t *TransactionAPI) ClaimWithdraw(ctx context.Context, walletAddress, withdrawalID string) (*types.Withdrawal, error) {
	if walletAddress == "" {
		return nil, errors.New("wallet address is required")
	}
	if withdrawalID == "" {
		return nil, errors.New("withdrawal id is required")
	}
	body := map[string]string{
		"walletAddress": walletAddress,
		"withdrawalId":  withdrawalID,
	}
	var withdrawal types.Withdrawal
	if _, err := t.client.do(ctx, http.MethodPost, "/transactions/withdraw/claim", body, &withdrawal); err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

// GetTransaction fetches one ledger entry by its hash.
func (t *TransactionAPI) GetTransaction(ctx context.Context, txHash string) (*types.Transaction, error) {
	if txHash == "" {
		return nil, errors.New("transaction hash is required")
	}
	var tx types.Transaction
	path := "/transactions/" + url.PathEscape(txHash)
	if _, err := t.client.do(ctx, http.MethodGet, path, nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

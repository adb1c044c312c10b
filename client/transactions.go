package client

import (
	"context"
	"net/url"
	"strconv"
)

// TransactionService handles transaction lifecycle operations.
type TransactionService struct {
	c *Client
}

// listResponse wraps the paginated transaction list response.
type listResponse struct {
	Transactions []Transaction `json:"transactions"`
	HasMore      bool          `json:"has_more"`
}

// Open creates a new PENDING transaction.
func (s *TransactionService) Open(ctx context.Context, req OpenTransactionRequest) (*Transaction, error) {
	var resp Transaction
	if err := s.c.post(ctx, "/api/v1/transactions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get returns one transaction by id.
func (s *TransactionService) Get(ctx context.Context, id string) (*Transaction, error) {
	var resp Transaction
	if err := s.c.get(ctx, "/api/v1/transactions/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns transactions newest first.
func (s *TransactionService) List(ctx context.Context, limit, offset int) ([]Transaction, bool, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	var resp listResponse
	if err := s.c.get(ctx, "/api/v1/transactions", params, &resp); err != nil {
		return nil, false, err
	}
	return resp.Transactions, resp.HasMore, nil
}

// Execute applies operations in order under the transaction. On a partial
// failure the returned error is the APIError and the results still describe
// every attempted operation.
func (s *TransactionService) Execute(ctx context.Context, id string, ops []Operation) ([]OperationResult, error) {
	body := map[string]any{"operations": ops}
	var resp ExecuteResponse
	err := s.c.post(ctx, "/api/v1/transactions/"+url.PathEscape(id)+"/operations", body, &resp)
	if err != nil {
		return resp.Results, err
	}
	return resp.Results, nil
}

// Complete transitions a PENDING transaction to COMPLETED.
func (s *TransactionService) Complete(ctx context.Context, id string) (*Transaction, error) {
	var resp Transaction
	if err := s.c.post(ctx, "/api/v1/transactions/"+url.PathEscape(id)+"/complete", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Fail transitions a PENDING transaction to FAILED.
func (s *TransactionService) Fail(ctx context.Context, id string) (*Transaction, error) {
	var resp Transaction
	if err := s.c.post(ctx, "/api/v1/transactions/"+url.PathEscape(id)+"/fail", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes a transaction and its audit trail. Requires the admin
// token; returns the number of change records removed.
func (s *TransactionService) Delete(ctx context.Context, id string) (int, error) {
	var resp DeleteResponse
	if err := s.c.del(ctx, "/api/v1/transactions/"+url.PathEscape(id), &resp); err != nil {
		return 0, err
	}
	return resp.DeletedRecords, nil
}

package client

import (
	"context"
	"net/url"
	"strconv"
)

// AuditService handles read-only audit history queries.
type AuditService struct {
	c *Client
}

// changesResponse wraps audit query responses.
type changesResponse struct {
	Changes []Change `json:"changes"`
	Count   int      `json:"count"`
}

// ByTransaction returns a transaction's change records in applied order.
func (s *AuditService) ByTransaction(ctx context.Context, id string) ([]Change, error) {
	var resp changesResponse
	if err := s.c.get(ctx, "/api/v1/audit/transactions/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Changes, nil
}

// ByEntity returns the full history of one entity across all transactions.
func (s *AuditService) ByEntity(ctx context.Context, entityType, entityID string) ([]Change, error) {
	path := "/api/v1/audit/entity/" + url.PathEscape(entityType) + "/" + url.PathEscape(entityID)
	var resp changesResponse
	if err := s.c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Changes, nil
}

// Recent returns the most recent changes within the trailing window.
func (s *AuditService) Recent(ctx context.Context, limit, days int) ([]Change, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}
	var resp changesResponse
	if err := s.c.get(ctx, "/api/v1/audit/recent", params, &resp); err != nil {
		return nil, err
	}
	return resp.Changes, nil
}

// Summary aggregates change activity over the trailing window.
func (s *AuditService) Summary(ctx context.Context, days int) (*Summary, error) {
	params := url.Values{}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}
	var resp Summary
	if err := s.c.get(ctx, "/api/v1/audit/summary", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

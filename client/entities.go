package client

import (
	"context"
	"net/url"
	"strconv"
)

// EntityService handles read access to current entity snapshots.
type EntityService struct {
	c *Client
}

// entitiesResponse wraps the paginated entity list response.
type entitiesResponse struct {
	Entities []Entity `json:"entities"`
	HasMore  bool     `json:"has_more"`
}

// Get returns the current snapshot of one entity.
func (s *EntityService) Get(ctx context.Context, entityType, entityID string) (*Entity, error) {
	path := "/api/v1/entities/" + url.PathEscape(entityType) + "/" + url.PathEscape(entityID)
	var resp Entity
	if err := s.c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns current snapshots of one entity type.
func (s *EntityService) List(ctx context.Context, entityType string, limit, offset int) ([]Entity, bool, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	var resp entitiesResponse
	if err := s.c.get(ctx, "/api/v1/entities/"+url.PathEscape(entityType), params, &resp); err != nil {
		return nil, false, err
	}
	return resp.Entities, resp.HasMore, nil
}

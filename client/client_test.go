package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(srv.URL)
	return srv, c
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "0.3.0", Database: "connected"})
		},
	})
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("got status %q, want ok", resp.Status)
	}
	if resp.Version != "0.3.0" {
		t.Errorf("got version %q, want 0.3.0", resp.Version)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/transactions": func(w http.ResponseWriter, r *http.Request) {
			var req OpenTransactionRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			jsonResponse(w, 201, Transaction{TransactionID: "tx-1", Description: req.Description, Status: "PENDING"})
		},
		"GET /api/v1/transactions/tx-1": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Transaction{TransactionID: "tx-1", Status: "PENDING"})
		},
		"POST /api/v1/transactions/tx-1/complete": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Transaction{TransactionID: "tx-1", Status: "COMPLETED"})
		},
		"GET /api/v1/transactions": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{"transactions": []Transaction{{TransactionID: "tx-1"}}, "has_more": false})
		},
	})

	ctx := context.Background()

	// Open
	txn, err := c.Transactions.Open(ctx, OpenTransactionRequest{Description: "nightly import"})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if txn.Status != "PENDING" || txn.Description != "nightly import" {
		t.Errorf("Open: got %+v", txn)
	}

	// Get
	txn, err = c.Transactions.Get(ctx, "tx-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if txn.TransactionID != "tx-1" {
		t.Errorf("Get: got id %q", txn.TransactionID)
	}

	// Complete
	txn, err = c.Transactions.Complete(ctx, "tx-1")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if txn.Status != "COMPLETED" {
		t.Errorf("Complete: got status %q", txn.Status)
	}

	// List
	txns, hasMore, err := c.Transactions.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(txns) != 1 || hasMore {
		t.Errorf("List: got %d transactions, hasMore=%v", len(txns), hasMore)
	}
}

func TestExecuteSuccess(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/transactions/tx-1/operations": func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Operations []Operation `json:"operations"`
			}
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			results := make([]OperationResult, len(req.Operations))
			for i := range req.Operations {
				results[i] = OperationResult{Index: i, Success: true, Record: &Change{ID: int64(i + 1)}}
			}
			jsonResponse(w, 200, ExecuteResponse{Results: results})
		},
	})

	results, err := c.Transactions.Execute(context.Background(), "tx-1", []Operation{
		{EntityType: "user", Action: "create", Data: map[string]any{"username": "a", "email": "b"}},
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(results) != 1 || !results[0].Success {
		t.Errorf("Execute: got %+v", results)
	}
}

func TestExecutePartialFailure(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/transactions/tx-1/operations": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, ExecuteResponse{
				Code:    "not_found",
				Message: "entity not found",
				Results: []OperationResult{
					{Index: 0, Success: true, Record: &Change{ID: 1}},
					{Index: 1, Error: "entity not found"},
				},
			})
		},
	})

	results, err := c.Transactions.Execute(context.Background(), "tx-1", []Operation{
		{EntityType: "user", Action: "create", Data: map[string]any{"username": "a", "email": "b"}},
		{EntityType: "user", Action: "delete", EntityID: "missing"},
	})
	if err == nil {
		t.Fatal("expected error for partial failure")
	}
	if !IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
	// The results still describe every attempted operation.
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if !results[0].Success || results[1].Success {
		t.Errorf("results = %+v", results)
	}
}

func TestDeleteSendsAdminToken(t *testing.T) {
	srvRoutes := map[string]http.HandlerFunc{
		"DELETE /api/v1/transactions/tx-1": func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer admin-token-for-tests" {
				jsonResponse(w, 401, APIError{Code: "unauthorized", Message: "invalid admin token"})
				return
			}
			jsonResponse(w, 200, DeleteResponse{Deleted: true, DeletedRecords: 5})
		},
	}
	mux := http.NewServeMux()
	for pattern, handler := range srvRoutes {
		mux.HandleFunc(pattern, handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(srv.URL, WithAdminToken("admin-token-for-tests"))
	deleted, err := c.Transactions.Delete(context.Background(), "tx-1")
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if deleted != 5 {
		t.Errorf("deleted = %d, want 5", deleted)
	}

	// Without the token the server rejects the call.
	noAuth := New(srv.URL)
	if _, err := noAuth.Transactions.Delete(context.Background(), "tx-1"); err == nil {
		t.Error("expected error without admin token")
	}
}

func TestAuditQueries(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/audit/transactions/tx-1": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{"changes": []Change{{ID: 1, ChangeType: "CREATED"}}, "count": 1})
		},
		"GET /api/v1/audit/entity/user/u-1": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{"changes": []Change{{ID: 1}, {ID: 2}}, "count": 2})
		},
		"GET /api/v1/audit/recent": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("limit") != "10" || r.URL.Query().Get("days") != "3" {
				t.Errorf("query = %v", r.URL.Query())
			}
			jsonResponse(w, 200, map[string]any{"changes": []Change{}, "count": 0})
		},
		"GET /api/v1/audit/summary": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Summary{PeriodDays: 7, TotalCount: 12})
		},
	})

	ctx := context.Background()

	changes, err := c.Audit.ByTransaction(ctx, "tx-1")
	if err != nil {
		t.Fatalf("ByTransaction error: %v", err)
	}
	if len(changes) != 1 || changes[0].ChangeType != "CREATED" {
		t.Errorf("ByTransaction: got %+v", changes)
	}

	changes, err = c.Audit.ByEntity(ctx, "user", "u-1")
	if err != nil {
		t.Fatalf("ByEntity error: %v", err)
	}
	if len(changes) != 2 {
		t.Errorf("ByEntity: got %d changes", len(changes))
	}

	if _, err := c.Audit.Recent(ctx, 10, 3); err != nil {
		t.Fatalf("Recent error: %v", err)
	}

	summary, err := c.Audit.Summary(ctx, 0)
	if err != nil {
		t.Fatalf("Summary error: %v", err)
	}
	if summary.TotalCount != 12 {
		t.Errorf("Summary: got total %d", summary.TotalCount)
	}
}

func TestEntityQueries(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/entities/user/u-1": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Entity{EntityType: "user", EntityID: "u-1", State: map[string]any{"username": "alice"}})
		},
		"GET /api/v1/entities/user": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{"entities": []Entity{{EntityID: "u-1"}, {EntityID: "u-2"}}, "has_more": true})
		},
	})

	ctx := context.Background()

	entity, err := c.Entities.Get(ctx, "user", "u-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if entity.State["username"] != "alice" {
		t.Errorf("Get: got state %v", entity.State)
	}

	entities, hasMore, err := c.Entities.List(ctx, "user", 0, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(entities) != 2 || !hasMore {
		t.Errorf("List: got %d entities, hasMore=%v", len(entities), hasMore)
	}
}

func TestAPIErrorParsing(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/transactions/missing": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, APIError{Code: "not_found", Message: "transaction not found", RequestID: "req-123"})
		},
		"GET /api/v1/transactions/broken": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(500)
			w.Write([]byte("upstream exploded")) //nolint:errcheck
		},
	})

	ctx := context.Background()

	_, err := c.Transactions.Get(ctx, "missing")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	apiErr := err.(*APIError)
	if apiErr.Code != "not_found" || apiErr.RequestID != "req-123" {
		t.Errorf("error = %+v", apiErr)
	}

	// Non-JSON bodies fall back to raw text.
	_, err = c.Transactions.Get(ctx, "broken")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != "unknown" || apiErr.Message != "upstream exploded" {
		t.Errorf("error = %+v", apiErr)
	}
}

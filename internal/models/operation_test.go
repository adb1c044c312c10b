package models_test

import (
	"errors"
	"testing"

	"github.com/chroniclehq/chronicle/internal/models"
)

func TestOperation_Validate(t *testing.T) {
	reg := models.DefaultRegistry()

	cases := []struct {
		name    string
		op      models.Operation
		wantErr bool
	}{
		{
			"valid create",
			models.Operation{EntityType: "user", Action: "create", Data: map[string]any{"username": "alice", "email": "a@b.com"}},
			false,
		},
		{
			"valid update",
			models.Operation{EntityType: "user", Action: "update", EntityID: "u-1", Data: map[string]any{"email": "b@b.com"}},
			false,
		},
		{
			"valid delete",
			models.Operation{EntityType: "product", Action: "delete", EntityID: "p-1"},
			false,
		},
		{
			"update missing id",
			models.Operation{EntityType: "user", Action: "update", Data: map[string]any{"email": "b@b.com"}},
			true,
		},
		{
			"delete missing id",
			models.Operation{EntityType: "user", Action: "delete"},
			true,
		},
		{
			"delete with data",
			models.Operation{EntityType: "user", Action: "delete", EntityID: "u-1", Data: map[string]any{"email": "x"}},
			true,
		},
		{
			"unknown action",
			models.Operation{EntityType: "user", Action: "upsert", EntityID: "u-1"},
			true,
		},
		{
			"unknown entity type",
			models.Operation{EntityType: "order", Action: "create", Data: map[string]any{}},
			true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.op.Validate(reg)
			if tc.wantErr && !errors.Is(err, models.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestOperation_ChangeType(t *testing.T) {
	cases := map[string]models.ChangeType{
		"create":  models.ChangeCreated,
		"update":  models.ChangeUpdated,
		"delete":  models.ChangeDeleted,
		"unknown": "",
	}

	for action, want := range cases {
		op := models.Operation{Action: action}
		if got := op.ChangeType(); got != want {
			t.Errorf("ChangeType(%q) = %q, want %q", action, got, want)
		}
	}
}

func TestExecuteRequest_Validate(t *testing.T) {
	empty := models.ExecuteRequest{}
	if err := empty.Validate(); err == nil {
		t.Error("empty batch must fail")
	}

	huge := models.ExecuteRequest{Operations: make([]models.Operation, 1001)}
	if err := huge.Validate(); err == nil {
		t.Error("oversized batch must fail")
	}

	ok := models.ExecuteRequest{Operations: make([]models.Operation, 1)}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid batch failed: %v", err)
	}
}

func TestOpenTransactionRequest_Validate(t *testing.T) {
	if err := (&models.OpenTransactionRequest{}).Validate(); err == nil {
		t.Error("missing description must fail")
	}

	long := make([]byte, 10001)
	for i := range long {
		long[i] = 'x'
	}
	req := models.OpenTransactionRequest{Description: string(long)}
	if err := req.Validate(); err == nil {
		t.Error("oversized description must fail")
	}

	good := models.OpenTransactionRequest{Description: "bulk import", Initiator: "alice"}
	if err := good.Validate(); err != nil {
		t.Errorf("valid request failed: %v", err)
	}
}

package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// executeArgs runs the given root command with args and returns any error.
// It suppresses cobra's usage/error output so test output stays clean.
func executeArgs(t *testing.T, root *cobra.Command, args ...string) error {
	t.Helper()
	root.SetOut(&strings.Builder{})
	root.SetErr(&strings.Builder{})
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return err
}

// newTestRoot builds a command tree like main() but with Run funcs stubbed
// out so only flag and arg validation fires; the API client is never touched.
func newTestRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "chronicle",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "")
	root.PersistentFlags().StringVar(&flagToken, "admin-token", "", "")
	root.PersistentFlags().StringVar(&flagFmt, "format", "json", "")

	root.AddCommand(stubRuns(newTxCmd()))
	root.AddCommand(stubRuns(newAuditCmd()))
	root.AddCommand(stubRuns(newEntityCmd()))
	return root
}

func stubRuns(cmd *cobra.Command) *cobra.Command {
	if cmd.Run != nil {
		cmd.Run = func(_ *cobra.Command, _ []string) {}
	}
	for _, sub := range cmd.Commands() {
		stubRuns(sub)
	}
	return cmd
}

func TestTxArgValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "open requires a description", args: []string{"tx", "open"}, wantErr: true},
		{name: "open accepts one description", args: []string{"tx", "open", "monthly import"}},
		{name: "get requires an id", args: []string{"tx", "get"}, wantErr: true},
		{name: "exec requires an id", args: []string{"tx", "exec"}, wantErr: true},
		{name: "complete requires an id", args: []string{"tx", "complete"}, wantErr: true},
		{name: "delete requires an id", args: []string{"tx", "delete"}, wantErr: true},
		{name: "list takes no positional args", args: []string{"tx", "list"}},
		{name: "unknown subcommand", args: []string{"tx", "rollback"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := executeArgs(t, newTestRoot(), tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("args %v: err = %v, wantErr = %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestAuditArgValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "tx requires an id", args: []string{"audit", "tx"}, wantErr: true},
		{name: "tx accepts one id", args: []string{"audit", "tx", "abc"}},
		{name: "entity requires type and id", args: []string{"audit", "entity", "user"}, wantErr: true},
		{name: "entity accepts type and id", args: []string{"audit", "entity", "user", "u-1"}},
		{name: "recent takes no positional args", args: []string{"audit", "recent"}},
		{name: "summary takes no positional args", args: []string{"audit", "summary"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := executeArgs(t, newTestRoot(), tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("args %v: err = %v, wantErr = %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestEntityArgValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "get requires type and id", args: []string{"entity", "get", "user"}, wantErr: true},
		{name: "get accepts type and id", args: []string{"entity", "get", "user", "u-1"}},
		{name: "list requires a type", args: []string{"entity", "list"}, wantErr: true},
		{name: "list accepts a type", args: []string{"entity", "list", "user"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := executeArgs(t, newTestRoot(), tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("args %v: err = %v, wantErr = %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

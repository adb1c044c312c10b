package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chroniclehq/chronicle/client"
)

func newTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Manage transactions",
	}
	cmd.AddCommand(txOpenCmd())
	cmd.AddCommand(txGetCmd())
	cmd.AddCommand(txListCmd())
	cmd.AddCommand(txExecCmd())
	cmd.AddCommand(txCompleteCmd())
	cmd.AddCommand(txFailCmd())
	cmd.AddCommand(txDeleteCmd())
	return cmd
}

func txOpenCmd() *cobra.Command {
	var initiator string
	cmd := &cobra.Command{
		Use:   "open <description>",
		Short: "Open a new transaction",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			txn, err := apiClient.Transactions.Open(context.Background(), client.OpenTransactionRequest{
				Description: args[0],
				Initiator:   initiator,
			})
			if err != nil {
				fatal("open transaction", err)
			}
			output(txn, txn.TransactionID)
		},
	}
	cmd.Flags().StringVar(&initiator, "initiator", "", "Who is making the changes")
	return cmd
}

func txGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a transaction by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			txn, err := apiClient.Transactions.Get(context.Background(), args[0])
			if err != nil {
				fatal("get transaction", err)
			}
			output(txn, txn.TransactionID)
		},
	}
}

func txListCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions newest first",
		Run: func(cmd *cobra.Command, args []string) {
			if limit < 0 || offset < 0 {
				fmt.Fprintf(os.Stderr, "Error: --limit and --offset must be non-negative\n")
				os.Exit(1)
			}
			txns, _, err := apiClient.Transactions.List(context.Background(), limit, offset)
			if err != nil {
				fatal("list transactions", err)
			}
			if flagFmt == "table" {
				headers := []string{"ID", "STATUS", "INITIATOR", "CREATED", "DESCRIPTION"}
				var rows [][]string
				for _, t := range txns {
					rows = append(rows, []string{
						t.TransactionID, t.Status, t.Initiator,
						t.CreatedAt.Format("2006-01-02 15:04:05"), t.Description,
					})
				}
				formatTable(headers, rows)
				return
			}
			if flagFmt == "quiet" {
				for _, t := range txns {
					fmt.Println(t.TransactionID)
				}
				return
			}
			output(txns, "")
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset")
	return cmd
}

func txExecCmd() *cobra.Command {
	var opsJSON, opsFile string
	cmd := &cobra.Command{
		Use:   "exec <id>",
		Short: "Apply a batch of operations under a transaction",
		Long: `Apply operations in order under the given transaction.

Operations are supplied as a JSON array, e.g.:
  [{"type":"user","operation":"create","data":{"username":"alice","email":"a@example.com"}}]

The batch stops at the first failure; earlier changes stay committed.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			raw := []byte(opsJSON)
			if opsFile != "" {
				data, err := os.ReadFile(opsFile)
				if err != nil {
					fatal("read operations file", err)
				}
				raw = data
			}
			if len(raw) == 0 {
				fmt.Fprintf(os.Stderr, "Error: provide operations via --ops or --file\n")
				os.Exit(1)
			}

			var ops []client.Operation
			if err := json.Unmarshal(raw, &ops); err != nil {
				fatal("parse operations", err)
			}

			results, err := apiClient.Transactions.Execute(context.Background(), args[0], ops)
			if err != nil {
				// Show how far the batch got before exiting non-zero.
				if len(results) > 0 {
					output(results, "")
				}
				fatal("execute operations", err)
			}
			output(results, "")
		},
	}
	cmd.Flags().StringVar(&opsJSON, "ops", "", "Operations as a JSON array")
	cmd.Flags().StringVar(&opsFile, "file", "", "Path to a JSON file with operations")
	return cmd
}

func txCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a transaction COMPLETED",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			txn, err := apiClient.Transactions.Complete(context.Background(), args[0])
			if err != nil {
				fatal("complete transaction", err)
			}
			output(txn, txn.TransactionID)
		},
	}
}

func txFailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fail <id>",
		Short: "Mark a transaction FAILED",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			txn, err := apiClient.Transactions.Fail(context.Background(), args[0])
			if err != nil {
				fatal("fail transaction", err)
			}
			output(txn, txn.TransactionID)
		},
	}
}

func txDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction and its audit trail (requires admin token)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if !yes {
				fmt.Fprintf(os.Stderr, "Error: this permanently removes audit history; re-run with --yes\n")
				os.Exit(1)
			}
			deleted, err := apiClient.Transactions.Delete(context.Background(), args[0])
			if err != nil {
				fatal("delete transaction", err)
			}
			fmt.Printf("deleted (%d change records removed)\n", deleted)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Health(context.Background())
			if err != nil {
				fatal("health check", err)
			}
			output(resp, resp.Status)
		},
	}
}

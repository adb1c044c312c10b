package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chroniclehq/chronicle/client"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the audit history",
	}
	cmd.AddCommand(auditTxCmd())
	cmd.AddCommand(auditEntityCmd())
	cmd.AddCommand(auditRecentCmd())
	cmd.AddCommand(auditSummaryCmd())
	return cmd
}

func auditTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tx <transaction-id>",
		Short: "Show all changes recorded under a transaction",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			changes, err := apiClient.Audit.ByTransaction(context.Background(), args[0])
			if err != nil {
				fatal("query transaction audit", err)
			}
			outputChanges(changes)
		},
	}
}

func auditEntityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entity <type> <id>",
		Short: "Show the full change history of one entity",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			changes, err := apiClient.Audit.ByEntity(context.Background(), args[0], args[1])
			if err != nil {
				fatal("query entity history", err)
			}
			outputChanges(changes)
		},
	}
}

func auditRecentCmd() *cobra.Command {
	var limit, days int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recent changes across all transactions",
		Run: func(cmd *cobra.Command, args []string) {
			changes, err := apiClient.Audit.Recent(context.Background(), limit, days)
			if err != nil {
				fatal("query recent changes", err)
			}
			outputChanges(changes)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Max results")
	cmd.Flags().IntVar(&days, "days", 7, "Trailing window in days")
	return cmd
}

func auditSummaryCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Aggregate change activity over a trailing window",
		Run: func(cmd *cobra.Command, args []string) {
			summary, err := apiClient.Audit.Summary(context.Background(), days)
			if err != nil {
				fatal("query summary", err)
			}
			output(summary, strconv.Itoa(summary.TotalCount))
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Trailing window in days")
	return cmd
}

func outputChanges(changes []client.Change) {
	if flagFmt == "table" {
		headers := []string{"ID", "TYPE", "ENTITY", "FIELDS", "AUTHOR", "COMMIT"}
		var rows [][]string
		for _, ch := range changes {
			rows = append(rows, []string{
				strconv.FormatInt(ch.ID, 10),
				ch.ChangeType,
				ch.EntityType + "/" + ch.EntityID,
				strings.Join(ch.ChangedFields, ","),
				ch.Author,
				ch.CommitDate.Format("2006-01-02 15:04:05"),
			})
		}
		formatTable(headers, rows)
		return
	}
	if flagFmt == "quiet" {
		for _, ch := range changes {
			fmt.Println(ch.ID)
		}
		return
	}
	output(changes, "")
}

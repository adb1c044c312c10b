package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newEntityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Inspect current entity state",
	}
	cmd.AddCommand(entityGetCmd())
	cmd.AddCommand(entityListCmd())
	return cmd
}

func entityGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <type> <id>",
		Short: "Get the current snapshot of one entity",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			entity, err := apiClient.Entities.Get(context.Background(), args[0], args[1])
			if err != nil {
				fatal("get entity", err)
			}
			output(entity, entity.EntityID)
		},
	}
}

func entityListCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list <type>",
		Short: "List current snapshots of one entity type",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if limit < 0 || offset < 0 {
				fmt.Fprintf(os.Stderr, "Error: --limit and --offset must be non-negative\n")
				os.Exit(1)
			}
			entities, _, err := apiClient.Entities.List(context.Background(), args[0], limit, offset)
			if err != nil {
				fatal("list entities", err)
			}
			if flagFmt == "quiet" {
				for _, e := range entities {
					fmt.Println(e.EntityID)
				}
				return
			}
			output(entities, "")
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset")
	return cmd
}

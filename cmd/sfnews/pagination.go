package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var offsetCmd = &cobra.Command{
	Use:   "offset",
	Short: "Show the stored pagination state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		row, err := a.Repo.PaginationRow(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read pagination state: %w", err)
		}
		return printRow(cmd.OutOrStdout(), row)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the stored pagination state",
	Long:  `Forget the stored offset so the next list starts from the newest articles.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Repo.ResetPagination(cmd.Context()); err != nil {
			return fmt.Errorf("failed to reset pagination: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Pagination state cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(offsetCmd)
	rootCmd.AddCommand(resetCmd)
}

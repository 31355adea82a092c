package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/pevans/sfnews/articles"
	"github.com/pevans/sfnews/outcome"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single article",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid article ID %q", args[0])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.NewDetailSession().Fetch(cmd.Context(), id, false)

	return outcome.Match(res,
		func(d articles.ArticleDetail) error {
			printArticle(cmd.OutOrStdout(), d)
			return nil
		},
		func(e *outcome.Error) error {
			printError(cmd.ErrOrStderr(), e)
			return errors.New("failed to fetch article")
		},
		func(*articles.ArticleDetail) error { return nil },
	)
}

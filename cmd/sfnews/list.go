package main

import (
	"errors"
	"fmt"

	"github.com/pevans/sfnews/listing"
	"github.com/spf13/cobra"
)

var (
	listSearch string
	listPages  int
	listReload bool
	listFormat string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the next page of articles",
	Long: `List articles, continuing from the offset stored by the previous run.

When the stored offset runs out, the next run starts over from the newest
articles. Use --reload to start over explicitly.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "only list articles matching this text")
	listCmd.Flags().IntVarP(&listPages, "pages", "n", 1, "number of pages to fetch")
	listCmd.Flags().BoolVar(&listReload, "reload", false, "forget the stored offset and start from the newest articles")
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table, json, compact)")
}

func runList(cmd *cobra.Command, args []string) error {
	if listPages < 1 {
		return fmt.Errorf("--pages must be at least 1, got %d", listPages)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	session := a.NewSession()
	defer session.Close()

	snap, err := fetchPages(session, listSearch, listPages, listReload)
	if err != nil {
		return err
	}

	if err := printList(cmd.OutOrStdout(), listFormat, snap.Items); err != nil {
		return err
	}

	if snap.Phase == listing.PhaseError {
		printError(cmd.ErrOrStderr(), snap.Err)
		return errors.New("failed to fetch articles")
	}
	return nil
}

// fetchPages loads up to pages pages for query, stopping at the first
// failure, and returns the final snapshot.
func fetchPages(session *listing.Session, query string, pages int, resetOffset bool) (listing.Snapshot, error) {
	if err := session.Load(listing.LoadOptions{
		Query:       &query,
		Reload:      true,
		ResetOffset: resetOffset,
	}); err != nil {
		return listing.Snapshot{}, err
	}
	session.Wait()

	for i := 1; i < pages && session.Snapshot().Phase == listing.PhaseSuccess; i++ {
		if err := session.Load(listing.LoadOptions{
			Query:    &query,
			LoadMore: true,
		}); err != nil {
			return listing.Snapshot{}, err
		}
		session.Wait()
	}

	return session.Snapshot(), nil
}

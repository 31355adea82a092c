package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pevans/sfnews/listing"
	"github.com/pevans/sfnews/outcome"
	"github.com/spf13/cobra"
)

var browseFormat string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse articles interactively",
	Long: `Browse reads commands from standard input, one per line.

Any plain text is treated as search input. Lines starting with a colon are
commands:
  :more        load the next page
  :retry       repeat the last request
  :reload      forget the stored offset and start over
  :show <id>   show a single article
  :q           quit`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().StringVarP(&browseFormat, "format", "f", "compact", "output format (table, json, compact)")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	session := a.NewSession()
	defer session.Close()
	detail := a.NewDetailSession()

	out := cmd.OutOrStdout()
	unsubscribe := session.Subscribe(snapshotPrinter(out, cmd.ErrOrStderr(), browseFormat))
	defer unsubscribe()

	if err := session.InitialLoad(); err != nil {
		return err
	}
	session.Wait()

	return browseLoop(cmd.InOrStdin(), out, session, func(id int64) {
		res := detail.Fetch(cmd.Context(), id, false)
		if d, ok := outcome.Value(res); ok {
			printArticle(out, d)
			return
		}
		printError(cmd.ErrOrStderr(), outcome.ErrorOf(res))
	})
}

// browseLoop reads commands from in until EOF or :q.
func browseLoop(in io.Reader, out io.Writer, session *listing.Session, show func(id int64)) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		var err error
		switch {
		case line == ":q" || line == ":quit":
			return nil
		case line == ":more":
			err = session.LoadMore()
		case line == ":retry":
			err = session.Retry()
		case line == ":reload":
			err = session.Reload()
		case strings.HasPrefix(line, ":show"):
			id, perr := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, ":show")), 10, 64)
			if perr != nil {
				fmt.Fprintln(out, "usage: :show <id>")
				continue
			}
			show(id)
			continue
		case strings.HasPrefix(line, ":"):
			fmt.Fprintf(out, "unknown command %q\n", line)
			continue
		default:
			err = session.SearchTextChanged(line)
		}
		if err != nil {
			return err
		}
		session.Wait()
	}
}

// snapshotPrinter returns a subscriber that prints each settled snapshot.
// After a load more only the appended articles are printed.
func snapshotPrinter(out, errOut io.Writer, format string) func(listing.Snapshot) {
	printed := 0
	appending := false
	return func(snap listing.Snapshot) {
		switch snap.Phase {
		case listing.PhaseLoading:
			appending = snap.Appending
			dimColor.Fprintln(errOut, "Loading...")
		case listing.PhaseSuccess:
			start := 0
			if appending && printed <= len(snap.Items) {
				start = printed
			}
			printed = len(snap.Items)
			if start > 0 && start == len(snap.Items) {
				fmt.Fprintln(out, "No more articles.")
				return
			}
			if err := printList(out, format, snap.Items[start:]); err != nil {
				fmt.Fprintln(errOut, err)
			}
		case listing.PhaseError:
			printError(errOut, snap.Err)
		}
	}
}

package cli

import (
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/adway7103/broker-demo/internal/search"
)

func newLinkCmd() *cobra.Command {
	var (
		flags  filterFlags
		budget string
		base   string
	)

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Build a shareable listings link",
		Long: "Build a pre-filtered listings URL to send to a client. --budget takes one of the " +
			"smart link budget labels and overrides --min-price and --max-price.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if base == "" {
				base = getServerURL()
			}
			return runLink(cmd.OutOrStdout(), flags.values(), budget, base)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&budget, "budget", "", `budget label, e.g. "₹50,000-₹80,000"`)
	cmd.Flags().StringVar(&base, "base-url", "", "site URL (default: server URL)")

	return cmd
}

func runLink(w io.Writer, v url.Values, budget, base string) error {
	if budget != "" && !validLinkBudget(budget) {
		return fmt.Errorf("unknown budget %q", budget)
	}

	f, err := search.ParseFilter(v)
	if err != nil {
		return err
	}
	normalized := f.Values()
	if budget != "" {
		normalized.Set("budget", budget)
	}
	b, err := search.LinkBuilderFromValues(normalized)
	if err != nil {
		return err
	}

	link := b.URL(base)
	if isJSON() {
		return printJSON(w, map[string]string{"url": link, "filter": b.Filter().String()})
	}
	fmt.Fprintln(w, link)
	return nil
}

func validLinkBudget(label string) bool {
	for _, b := range search.LinkBudgets {
		if b.Label == label {
			return true
		}
	}
	return false
}

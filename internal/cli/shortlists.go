package cli

import (
	"github.com/spf13/cobra"
)

func newShortlistsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shortlists",
		Short: "Browse client shortlists",
	}
	cmd.AddCommand(newShortlistsListCmd())
	return cmd
}

func newShortlistsListCmd() *cobra.Command {
	var (
		phone       string
		page, limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List shortlists",
		Long:  "List shortlisted properties. Without --phone this needs login and lists every client's shortlist.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := newAPIClient().ListShortlists(phone, page, limit)
			if err != nil {
				return apiError(err)
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), list)
			}
			return printShortlistTable(cmd.OutOrStdout(), list.Shortlists, list.Pagination)
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "only this client's phone number")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "results per page")

	return cmd
}

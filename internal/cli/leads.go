package cli

import (
	"github.com/spf13/cobra"

	"github.com/adway7103/broker-demo/internal/client"
)

func newLeadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Browse wizard leads",
	}
	cmd.AddCommand(newLeadsListCmd())
	return cmd
}

func newLeadsListCmd() *cobra.Command {
	var q client.LeadQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads",
		Long:  "List leads captured by the search wizard, newest first. Requires login.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := newAPIClient().ListLeads(q)
			if err != nil {
				return apiError(err)
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), list)
			}
			return printLeadTable(cmd.OutOrStdout(), list.Leads, list.Pagination)
		},
	}

	cmd.Flags().StringVar(&q.Search, "search", "", "match phone, email or name")
	cmd.Flags().StringVar(&q.ListingType, "listing-type", "", "RENT or BUY")
	cmd.Flags().StringVar(&q.PropertyType, "type", "", "property type")
	cmd.Flags().StringVar(&q.Locality, "locality", "", "locality")
	cmd.Flags().StringVar(&q.Furnishing, "furnishing", "", "furnishing")
	cmd.Flags().StringVar(&q.Budget, "budget", "", "budget label")
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "results per page (default 10, max 100)")

	return cmd
}

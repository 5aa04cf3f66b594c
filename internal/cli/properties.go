package cli

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adway7103/broker-demo/internal/search"
)

// filterFlags are the listing filters shared by properties list and link.
type filterFlags struct {
	listingType   string
	propertyTypes []string
	localities    []string
	furnishings   []string
	minPrice      int64
	maxPrice      int64
	search        string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.listingType, "listing-type", "", "RENT or BUY")
	cmd.Flags().StringSliceVar(&f.propertyTypes, "type", nil, "property types, e.g. 2BHK,Villa")
	cmd.Flags().StringSliceVar(&f.localities, "locality", nil, "localities, e.g. BANDRA_WEST,POWAI")
	cmd.Flags().StringSliceVar(&f.furnishings, "furnishing", nil, "FULLY_FURNISHED, SEMI_FURNISHED or UNFURNISHED")
	cmd.Flags().Int64Var(&f.minPrice, "min-price", 0, "minimum price in rupees")
	cmd.Flags().Int64Var(&f.maxPrice, "max-price", 0, "maximum price in rupees")
	cmd.Flags().StringVar(&f.search, "search", "", "free-text search")
}

// values encodes the flags the way the listings page reads its query.
// Values and labels are both accepted; search.ParseFilter normalizes them.
func (f *filterFlags) values() url.Values {
	v := url.Values{}
	if f.listingType != "" {
		v.Set("listingType", f.listingType)
	}
	if len(f.propertyTypes) > 0 {
		v.Set("propertyType", strings.Join(f.propertyTypes, ","))
	}
	if len(f.localities) > 0 {
		v.Set("locality", strings.Join(f.localities, ","))
	}
	if len(f.furnishings) > 0 {
		v.Set("furnishing", strings.Join(f.furnishings, ","))
	}
	if f.minPrice > 0 {
		v.Set("minPrice", strconv.FormatInt(f.minPrice, 10))
	}
	if f.maxPrice > 0 {
		v.Set("maxPrice", strconv.FormatInt(f.maxPrice, 10))
	}
	if f.search != "" {
		v.Set("search", f.search)
	}
	return v
}

func newPropertiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "properties",
		Aliases: []string{"property", "p"},
		Short:   "Browse and manage listings",
	}
	cmd.AddCommand(
		newPropertiesListCmd(),
		newPropertiesShowCmd(),
		newPropertiesRentCmd(),
		newPropertiesDeleteCmd(),
	)
	return cmd
}

func newPropertiesListCmd() *cobra.Command {
	var (
		flags       filterFlags
		page, limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List properties",
		Long:  "List properties from the server, newest first, optionally filtered.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := flags.values()
			if page > 0 {
				v.Set("page", strconv.Itoa(page))
			}
			if limit > 0 {
				v.Set("limit", strconv.Itoa(limit))
			}
			return runPropertiesList(cmd.OutOrStdout(), v)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "results per page (default 12, max 100)")

	return cmd
}

func runPropertiesList(w io.Writer, v url.Values) error {
	f, err := search.ParseFilter(v)
	if err != nil {
		return err
	}

	list, err := newAPIClient().ListProperties(f)
	if err != nil {
		return apiError(err)
	}

	if isJSON() {
		return printJSON(w, list)
	}
	return printPropertyTable(w, list.Properties, list.Pagination)
}

func newPropertiesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show property details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newAPIClient().GetProperty(args[0])
			if err != nil {
				return apiError(err)
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), p)
			}
			printPropertySummary(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func newPropertiesRentCmd() *cobra.Command {
	var available bool

	cmd := &cobra.Command{
		Use:   "rent <id>",
		Short: "Mark a property rented",
		Long:  "Mark a property rented, or available again with --available. Requires login.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newAPIClient().SetRented(args[0], !available)
			if err != nil {
				return apiError(err)
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now %s\n", p.Title, rentedLabel(p.IsRented))
			return nil
		},
	}

	cmd.Flags().BoolVar(&available, "available", false, "mark the property available instead")

	return cmd
}

func newPropertiesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a property",
		Long:    "Delete a property along with its images and shortlists. Requires login.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newAPIClient().DeleteProperty(args[0]); err != nil {
				return apiError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Property %s deleted\n", args[0])
			return nil
		},
	}
}

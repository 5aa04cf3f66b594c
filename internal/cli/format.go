package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/adway7103/broker-demo/internal/client"
	"github.com/adway7103/broker-demo/internal/lead"
	"github.com/adway7103/broker-demo/internal/property"
	"github.com/adway7103/broker-demo/internal/shortlist"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printPropertySummary prints a single property in text format.
func printPropertySummary(w io.Writer, p *property.Property) {
	fmt.Fprintf(w, "%s\n", p.Title)
	fmt.Fprintf(w, "  ID:          %s\n", p.ID)
	fmt.Fprintf(w, "  Price:       %s\n", property.FormatPrice(p.Price, p.Currency))
	fmt.Fprintf(w, "  Listing:     %s\n", p.ListingType.Label())
	fmt.Fprintf(w, "  Type:        %s\n", p.PropertyType)
	fmt.Fprintf(w, "  Locality:    %s\n", p.Locality.Label())
	fmt.Fprintf(w, "  Furnishing:  %s\n", p.Furnishing.Label())
	if p.Area != nil {
		fmt.Fprintf(w, "  Area:        %s sq ft\n", humanize.Comma(*p.Area))
	}
	if p.Bedrooms != nil {
		fmt.Fprintf(w, "  Bedrooms:    %d\n", *p.Bedrooms)
	}
	if p.Bathrooms != nil {
		fmt.Fprintf(w, "  Bathrooms:   %d\n", *p.Bathrooms)
	}
	if len(p.Features) > 0 {
		fmt.Fprintf(w, "  Features:    %s\n", strings.Join(p.Features, ", "))
	}
	if len(p.Images) > 0 {
		fmt.Fprintf(w, "  Images:      %d\n", len(p.Images))
	}
	fmt.Fprintf(w, "  Status:      %s\n", rentedLabel(p.IsRented))
	fmt.Fprintf(w, "  Listed:      %s\n", humanize.Time(p.CreatedAt))
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
}

func rentedLabel(rented bool) string {
	if rented {
		return "rented"
	}
	return "available"
}

// printPropertyTable prints a page of properties as a formatted table.
func printPropertyTable(w io.Writer, props []*property.Property, pg client.Pagination) error {
	if len(props) == 0 {
		fmt.Fprintln(w, "No properties found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tTYPE\tLOCALITY\tSTATUS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "--\t-----\t-----\t----\t--------\t------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range props {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, truncate(p.Title, 40), property.CompactPrice(p.Price),
			p.PropertyType, p.Locality.Label(), rentedLabel(p.IsRented)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	printPageFooter(w, "properties", pg)
	return nil
}

// printLeadTable prints a page of leads as a formatted table.
func printLeadTable(w io.Writer, leads []*lead.Lead, pg client.Pagination) error {
	if len(leads) == 0 {
		fmt.Fprintln(w, "No leads found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "PHONE\tNAME\tLOOKING FOR\tBUDGET\tLOCALITY\tRECEIVED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for _, l := range leads {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			l.PhoneNumber, dash(l.Name), dash(l.ListingType), dash(l.Budget),
			truncate(dash(l.Locality), 30), humanize.Time(l.CreatedAt)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	printPageFooter(w, "leads", pg)
	return nil
}

// printShortlistTable prints a page of shortlists as a formatted table.
func printShortlistTable(w io.Writer, items []*shortlist.Shortlist, pg client.Pagination) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "No shortlists found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tPHONE\tPROPERTY\tPRICE\tADDED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for _, s := range items {
		title, price := s.PropertyID, "-"
		if s.Property != nil {
			title = s.Property.Title
			price = property.CompactPrice(s.Property.Price)
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.PhoneNumber, truncate(title, 40), price, humanize.Time(s.CreatedAt)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	printPageFooter(w, "shortlists", pg)
	return nil
}

func printPageFooter(w io.Writer, noun string, pg client.Pagination) {
	if pg.Pages > 1 {
		fmt.Fprintf(w, "\nPage %d of %d (%s %s)\n", pg.Page, pg.Pages, humanize.Comma(pg.Total), noun)
		return
	}
	fmt.Fprintf(w, "\nTotal: %s %s\n", humanize.Comma(pg.Total), noun)
}

// dash returns "-" for a missing optional value.
func dash(s *string) string {
	if v := lead.Value(s); v != "" {
		return v
	}
	return "-"
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

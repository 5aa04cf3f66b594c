package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adway7103/broker-demo/internal/property"
)

func newSeedCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample Mumbai listings",
		Long:  "Insert a handful of sample rental and sale listings. Does nothing when properties already exist unless --force is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), cmd.OutOrStdout(), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "insert samples even if properties exist")

	return cmd
}

func runSeed(ctx context.Context, w io.Writer, force bool) error {
	cfg, err := loadServerConfig()
	if err != nil {
		return err
	}
	gdb, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closeDB(gdb)

	n, err := seedProperties(ctx, property.NewRepository(gdb), force)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(w, "Properties already exist, nothing to do (use --force to add samples anyway).")
		return nil
	}
	fmt.Fprintf(w, "✓ Added %d sample properties\n", n)
	return nil
}

// seedProperties inserts the sample listings and returns how many were added.
func seedProperties(ctx context.Context, repo *property.Repository, force bool) (int, error) {
	if !force {
		count, err := repo.Count(ctx)
		if err != nil {
			return 0, err
		}
		if count > 0 {
			return 0, nil
		}
	}

	samples := sampleProperties()
	for i, p := range samples {
		if err := repo.Create(ctx, p); err != nil {
			return i, fmt.Errorf("adding %q: %w", p.Title, err)
		}
	}
	return len(samples), nil
}

func sampleProperties() []*property.Property {
	n := func(v int64) *int64 { return &v }
	mumbai, maharashtra := "Mumbai", "Maharashtra"
	sample := func(title, desc string, price int64, pt property.PropertyType, lt property.ListingType,
		loc property.Locality, f property.Furnishing, area, beds, baths int64, features ...string) *property.Property {
		return &property.Property{
			Title:        title,
			Description:  desc,
			Price:        price,
			PropertyType: pt,
			ListingType:  lt,
			Locality:     loc,
			City:         &mumbai,
			State:        &maharashtra,
			Furnishing:   f,
			Features:     features,
			Area:         n(area),
			Bedrooms:     n(beds),
			Bathrooms:    n(baths),
		}
	}

	return []*property.Property{
		sample("Sea-facing 2BHK on Carter Road",
			"Bright apartment with a full sea view, modular kitchen and covered parking. Walking distance to the promenade.",
			1_25_000, "2BHK", property.ListingRent, "BANDRA_WEST", property.FullyFurnished, 950, 2, 2,
			"Sea view", "Covered parking", "Modular kitchen", "24x7 security"),
		sample("Compact studio near Powai lake",
			"Well kept studio in a gated society, close to Hiranandani Gardens and the IT parks.",
			32_000, "Studio", property.ListingRent, "POWAI", property.SemiFurnished, 420, 1, 1,
			"Gym", "Swimming pool", "Power backup"),
		sample("Family 3BHK in Andheri West",
			"Spacious three bedroom flat near the metro with a large balcony and a children's play area.",
			85_000, "3BHK", property.ListingRent, "ANDHERI_WEST", property.SemiFurnished, 1250, 3, 3,
			"Balcony", "Lift", "Play area"),
		sample("1BHK starter home in Thane West",
			"Affordable one bedroom apartment in a new tower with clubhouse access.",
			18_000, "1BHK", property.ListingRent, "THANE_WEST", property.Unfurnished, 560, 1, 1,
			"Clubhouse", "Lift"),
		sample("Worli penthouse with skyline views",
			"Duplex penthouse with a private terrace overlooking the Bandra-Worli Sea Link.",
			12_50_00_000, "Penthouse", property.ListingBuy, "WORLI", property.FullyFurnished, 4200, 4, 5,
			"Private terrace", "Jacuzzi", "Sea view", "Concierge"),
		sample("Independent villa in Juhu",
			"Bungalow on a quiet lane, five minutes from Juhu beach, with a garden and staff quarters.",
			28_00_00_000, "Villa", property.ListingBuy, "JUHU", property.SemiFurnished, 5500, 5, 6,
			"Garden", "Staff quarters", "Private parking"),
		sample("2BHK resale in Goregaon East",
			"Ready to move flat close to the Western Express Highway and Oberoi Mall.",
			1_65_00_000, "2BHK", property.ListingBuy, "GOREGAON_EAST", property.Unfurnished, 780, 2, 2,
			"Lift", "Covered parking"),
		sample("3BHK in Chembur with garden view",
			"Corner apartment in a well maintained society near the monorail station.",
			2_40_00_000, "3BHK", property.ListingBuy, "CHEMBUR", property.SemiFurnished, 1150, 3, 2,
			"Garden view", "Gym", "Rain water harvesting"),
	}
}

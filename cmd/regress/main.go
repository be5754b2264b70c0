package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"compstone/server/config"
	"compstone/server/internal/database"
	"compstone/server/internal/geometry"
	"compstone/server/internal/models"
	"compstone/server/internal/regression"
	"compstone/server/internal/valuation"
)

var (
	dbPath      string
	ratePercent float64
)

var rootCmd = &cobra.Command{
	Use:   "regress",
	Short: "Fit lot-size premium models over the comp database",
	Long: `Fits a ladder of progressively richer linear models over the recorded
comparable sales, from lot-size-only through building area, renovation
status, lot width, and amenity distances. Prices are appreciation-adjusted
to today before fitting. Reports R-squared and RMSE per model, best first.`,
	RunE: runStudy,
}

func init() {
	rootCmd.Flags().StringVar(&dbPath, "db", "database/compstone.db", "path to the comps database")
	rootCmd.Flags().Float64Var(&ratePercent, "rate", 5, "annual appreciation rate in percent")
}

func runStudy(cmd *cobra.Command, args []string) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)

	db, err := database.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	comps, err := db.GetComps()
	if err != nil {
		return fmt.Errorf("failed to load comps: %w", err)
	}

	if err := config.LoadAmenityConfig(); err != nil {
		logger.WithError(err).Warn("No amenity configuration; distance models will be skipped")
	}
	transit := config.GetAmenitiesByKind(config.AmenityTransit)
	commercial := config.GetAmenitiesByKind(config.AmenityCommercial)

	obs := buildObservations(comps, ratePercent/100, transit, commercial)
	if len(obs) == 0 {
		return fmt.Errorf("no usable comps in %s", dbPath)
	}
	logger.WithField("observations", len(obs)).Info("Fitting models")

	reports, err := regression.RunStudy(obs)
	if err != nil {
		return err
	}

	printReports(cmd.OutOrStdout(), reports, len(obs))
	return nil
}

// buildObservations converts comps into regression rows. Sale prices are
// appreciation-adjusted to today so sales from different years are
// comparable. Comps without a parseable sale date or positive areas are
// skipped.
func buildObservations(comps []*models.Property, rate float64, transit, commercial []config.Amenity) []regression.Observation {
	now := time.Now()

	var obs []regression.Observation
	for _, c := range comps {
		if c.OriginalSalePrice <= 0 || c.PropertySQFT() <= 0 || c.BuildingSQFT() <= 0 {
			continue
		}
		adj := valuation.Appreciate(c.OriginalSalePrice, c.SaleDate, rate, now)

		renovated := 0.0
		if c.Renovated == models.RenovatedYes {
			renovated = 1
		}

		o := regression.Observation{
			Address:      c.Address,
			Price:        adj.AdjustedPrice,
			LotSQFT:      c.PropertySQFT(),
			BuildingSQFT: c.BuildingSQFT(),
			Renovated:    renovated,
			Width:        c.PropertyWidth,
		}

		transitDist, okT := geometry.NearestAmenityFeet(c, transit)
		commercialDist, okC := geometry.NearestAmenityFeet(c, commercial)
		if okT && okC {
			o.TransitDistance = transitDist
			o.CommercialDistance = commercialDist
			o.HasAmenityDistance = true
		}

		obs = append(obs, o)
	}
	return obs
}

func printReports(out io.Writer, reports []regression.ModelReport, n int) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "MODEL\tFEATURES\tR2\tRMSE\tCOEFFICIENTS\n")
	for _, r := range reports {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t%s\t-\t-\tfailed: %v\n", r.Name, strings.Join(r.Features, ","), r.Err)
			continue
		}
		coefs := make([]string, len(r.Fit.Coefficients))
		for i, c := range r.Fit.Coefficients {
			coefs[i] = fmt.Sprintf("%.2f", c)
		}
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.0f\t[%s]\n",
			r.Name, strings.Join(r.Features, ","), r.Fit.RSquared, r.Fit.RMSE, strings.Join(coefs, " "))
	}
	w.Flush()
	fmt.Fprintf(w, "\n%d observations, models ranked by R2\n", n)
	w.Flush()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

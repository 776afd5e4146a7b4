package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/shandysiswandi/goflightscore/internal/app"
	"github.com/shandysiswandi/goflightscore/internal/flightscore/entity"
	"github.com/shandysiswandi/goflightscore/internal/flightscore/inbound"
	"github.com/shandysiswandi/goflightscore/internal/flightscore/provider"
	"github.com/shandysiswandi/goflightscore/internal/flightscore/usecase"
)

// routeFlags are shared by the offline commands that read a saved payload.
type routeFlags struct {
	file     string
	from     string
	to       string
	timezone string
}

func (f *routeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "Path to a saved Google Flights JSON payload (required)")
	cmd.Flags().StringVar(&f.from, "from", "", "Departure airport id; defaults to the payload's search parameters")
	cmd.Flags().StringVar(&f.to, "to", "", "Arrival airport id; defaults to the payload's search parameters")
	cmd.Flags().StringVar(&f.timezone, "timezone", usecase.DefaultTimezone, "IANA zone flight times are converted to")
	_ = cmd.MarkFlagRequired("file")
}

func (f *routeFlags) load(ctx context.Context) ([]byte, *time.Location, error) {
	loc, err := usecase.LoadTimezone(f.timezone)
	if err != nil {
		return nil, nil, err
	}
	payload, err := provider.NewFileProvider(f.file).Search(ctx, provider.SearchRequest{})
	if err != nil {
		return nil, nil, err
	}
	return payload, loc, nil
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			serve(cmd.Context(), *configPath)
			return nil
		},
	}
}

func serve(ctx context.Context, configPath string) {
	application := app.New(app.Options{ConfigPath: configPath}) // Initialize the application
	wait := application.Start(ctx)                              // Start the application and wait for the termination signal
	<-wait                                                      // Wait for the application to receive a termination signal

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(stopCtx) // Stop the application gracefully
}

func normalizeCmd() *cobra.Command {
	var flags routeFlags

	cmd := &cobra.Command{
		Use:     "normalize",
		Short:   "Flatten a saved payload into direct flights",
		Example: `  goflightscore normalize --file mocks/serpapi_search_response.json --from YYZ --to LAS`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.from == "" || flags.to == "" {
				return errors.New("--from and --to are required")
			}
			payload, loc, err := flags.load(cmd.Context())
			if err != nil {
				return err
			}
			flights, err := usecase.NormalizeFlights(payload, flags.from, flags.to, loc)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), inbound.NewFlightResponses(flights))
		},
	}

	flags.bind(cmd)

	return cmd
}

func scoreCmd() *cobra.Command {
	var (
		flags routeFlags
		prefs entity.Preferences
	)

	cmd := &cobra.Command{
		Use:     "score",
		Short:   "Rank the flights of a saved payload",
		Example: `  goflightscore score --file mocks/serpapi_search_response.json --cost 2 --duration 1 --redeye -3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, loc, err := flags.load(cmd.Context())
			if err != nil {
				return err
			}
			uc := usecase.New(usecase.Dependency{
				Provider: provider.NewFileProvider(flags.file),
				Location: loc,
			})
			output, err := uc.Score(cmd.Context(), usecase.ScoreInput{
				Payload:     payload,
				DepartureID: flags.from,
				ArrivalID:   flags.to,
				Preferences: prefs,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), inbound.NewScoreResponse(output))
		},
	}

	flags.bind(cmd)
	cmd.Flags().Float64Var(&prefs.Cost, "cost", 0, "Cost preference weight, -5 to 5")
	cmd.Flags().Float64Var(&prefs.Duration, "duration", 0, "Duration preference weight, -5 to 5")
	cmd.Flags().Float64Var(&prefs.Redeye, "redeye", 0, "Red-eye preference weight, -5 to 5")

	return cmd
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

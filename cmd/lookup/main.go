// Command lookup runs a single statistics lookup outside Telegram and prints
// the reply the bot would send.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/eliseohh/keralastatsbot/internal/bot"
	"github.com/eliseohh/keralastatsbot/internal/config"
	"github.com/eliseohh/keralastatsbot/internal/fault"
	"github.com/eliseohh/keralastatsbot/internal/stats"
	"github.com/spf13/cobra"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		date    string
		apiURL  string
		timeout time.Duration
		verbose bool
	)

	cmd := &cobra.Command{
		Use:          "lookup <place>",
		Short:        "Query the statistics API for one place",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil && !errors.Is(err, config.ErrMissingToken) {
				return err
			}
			if cmd.Flags().Changed("date") {
				cfg.StatsDate = date
			}
			if apiURL != "" {
				cfg.StatsAPIURL = apiURL
			}
			if timeout > 0 {
				cfg.StatsTimeout = timeout
			}
			return run(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], verbose)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "statistics date, DD-MM-YYYY")
	cmd.Flags().StringVar(&apiURL, "api", "", "statistics API base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print lookup outcome")
	return cmd
}

func run(ctx context.Context, out io.Writer, cfg config.Config, place string, verbose bool) error {
	date, err := time.ParseInLocation(config.DateLayout, cfg.StatsDate, time.UTC)
	if err != nil {
		return fault.New(fault.Date, "parse date", err)
	}

	loc, ok := cfg.Places.Match(place)
	if !ok {
		return fmt.Errorf("%q is not a recognized place (known: %v)", place, cfg.Places.Names())
	}

	client := stats.NewClient(cfg.StatsAPIURL, &http.Client{Timeout: cfg.StatsTimeout})
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := client.Fetch(ctx, loc, date)
	if err != nil {
		return err
	}

	res := resp.Lookup(date, place)
	if verbose {
		fmt.Fprintf(out, "outcome=%s under_observation=%s discharged=%s\n",
			res.Outcome(), res.UnderObservation.State, res.Discharged.State)
	}
	fmt.Fprintln(out, bot.FormatStats(res))
	return nil
}

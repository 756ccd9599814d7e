package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/service"
	"github.com/spf13/cobra"
)

var (
	trendsDays     int
	trendsInterval string
)

var trendsCmd = &cobra.Command{
	Use:   "trends <search text>",
	Short: "Show social mentions of a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := runtimeFrom(cmd)
		d, err := newDeps(cmd.Context(), rt.cfg, rt.logger, nil)
		if err != nil {
			return err
		}
		defer d.close()

		to := time.Now().UTC().Truncate(time.Hour)
		q := core.TopicQuery{
			SearchText: strings.Join(args, " "),
			From:       to.AddDate(0, 0, -trendsDays),
			To:         to,
			Interval:   trendsInterval,
		}
		reader := service.NewDataReader(d.api, d.sessions, d.cache, rt.logger)
		return runTrends(cmd.Context(), cmd.OutOrStdout(), reader, q)
	},
}

func init() {
	trendsCmd.Flags().IntVar(&trendsDays, "days", 30, "Number of days to search back")
	trendsCmd.Flags().StringVar(&trendsInterval, "interval", core.DefaultTopicInterval, "Bucket size, e.g. 1h or 1d")
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(ctx context.Context, out io.Writer, reader *service.DataReader, q core.TopicQuery) error {
	result, err := reader.TopicSearch(ctx, q)
	if err != nil {
		return err
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprint(out, formatTrendsHuman(q.SearchText, result))
	}
	return nil
}

func formatTrendsHuman(text string, t *core.TopicSearch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mentions of %q: %d\n", text, t.Total())

	sources := []struct {
		label  string
		series []core.Mentions
	}{
		{"Telegram", t.ChartsData.Telegram},
		{"Reddit", t.ChartsData.Reddit},
		{"Traders chat", t.ChartsData.ProfessionalTradersChat},
	}
	for _, src := range sources {
		if len(src.series) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s:\n", src.label)
		for _, m := range src.series {
			fmt.Fprintf(&b, "    %s  %d\n", m.Datetime.UTC().Format("2006-01-02 15:04"), m.MentionsCount)
		}
	}
	return b.String()
}

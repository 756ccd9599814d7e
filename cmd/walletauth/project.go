package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/service"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project <id>",
	Short: "Show a project, using the session token when logged in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := runtimeFrom(cmd)
		d, err := newDeps(cmd.Context(), rt.cfg, rt.logger, nil)
		if err != nil {
			return err
		}
		defer d.close()

		reader := service.NewDataReader(d.api, d.sessions, d.cache, rt.logger)
		return runProject(cmd.Context(), cmd.OutOrStdout(), reader, args[0])
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
}

func runProject(ctx context.Context, out io.Writer, reader *service.DataReader, id string) error {
	project, err := reader.Project(ctx, id)
	if errors.Is(err, core.ErrProjectNotFound) {
		return fmt.Errorf("project %s not found", id)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(project, "", "  ")
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprint(out, formatProjectHuman(project))
	}
	return nil
}

func formatProjectHuman(p *core.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", p.Name, strings.ToUpper(p.Ticker))
	fmt.Fprintf(&b, "  Market cap: $%s\n", p.MarketCapUSD.StringFixed(0))

	links := []struct{ label, url string }{
		{"Website", p.WebsiteLink},
		{"Whitepaper", p.WhitepaperLink},
		{"GitHub", p.GithubLink},
		{"Twitter", p.TwitterLink},
		{"Reddit", p.RedditLink},
		{"Facebook", p.FacebookLink},
		{"Slack", p.SlackLink},
	}
	for _, l := range links {
		if l.url != "" {
			fmt.Fprintf(&b, "  %-11s %s\n", l.label+":", l.url)
		}
	}
	return b.String()
}

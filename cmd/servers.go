package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"marquee/internal/httputil"
	"marquee/internal/media"
	"marquee/internal/playback"
	"marquee/internal/ui"
)

var flagCheck bool

// probeMovieID is the title used to check servers: The Matrix.
const probeMovieID = 603

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List playback servers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		servers := playback.NewTable(cfg.Servers, cfg.DefaultServer)
		list := servers.List()

		probes := map[string]*playback.ProbeResult{}
		probeErrs := map[string]error{}
		if flagCheck {
			var mu sync.Mutex
			p := pool.New().WithMaxGoroutines(4)
			client := httputil.NewClient()
			for _, s := range list {
				p.Go(func() {
					u, err := playback.BuildURL(s, media.Movie, probeMovieID, 0, 0)
					var res *playback.ProbeResult
					if err == nil {
						res, err = playback.Probe(context.Background(), client, u)
					}
					mu.Lock()
					defer mu.Unlock()
					probes[s.Key] = res
					probeErrs[s.Key] = err
				})
			}
			p.Wait()
		}

		if flagJSON {
			type row struct {
				playback.Server
				Default bool                  `json:"default"`
				Probe   *playback.ProbeResult `json:"probe,omitempty"`
				Error   string                `json:"probe_error,omitempty"`
			}
			rows := make([]row, len(list))
			for i, s := range list {
				rows[i] = row{Server: s, Default: s.Key == servers.Default(), Probe: probes[s.Key]}
				if err := probeErrs[s.Key]; err != nil {
					rows[i].Error = err.Error()
				}
			}
			return printJSON(rows)
		}

		for _, s := range list {
			line := fmt.Sprintf("  %-8s %s", s.Key, s.Label())
			if s.Key == servers.Default() {
				line += " (default)"
			}
			if flagCheck {
				switch res, err := probes[s.Key], probeErrs[s.Key]; {
				case err != nil:
					line += "  " + ui.Error("unreachable")
				case res.Available():
					line += "  " + ui.Dim(fmt.Sprintf("ok (%d)", res.StatusCode))
				default:
					line += "  " + ui.Error(fmt.Sprintf("no player (%d)", res.StatusCode))
				}
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	serversCmd.Flags().BoolVar(&flagCheck, "check", false, "Probe each server for availability")
}

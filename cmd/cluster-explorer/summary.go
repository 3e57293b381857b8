package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
	"github.com/justestif/go-music-cluster-explorer/internal/explorer"
)

func newSummaryCmd(a *app) *cobra.Command {
	var label int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a text summary of every cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			log := cfg.NewLogger()

			svc := explorer.New(dataset.NewCache(dataset.WithLogger(log)), cfg.DataPath, explorer.WithLogger(log))

			var out string
			if cmd.Flags().Changed("cluster") {
				out, err = svc.ClusterSummary(label)
			} else {
				out, err = svc.Summary()
			}
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&label, "cluster", 0, "only summarize this cluster")
	return cmd
}

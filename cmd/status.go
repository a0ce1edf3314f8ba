package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		leads, err := st.CountMasterLeads(ctx)
		if err != nil {
			return eris.Wrap(err, "count master leads")
		}
		links, err := st.CountSourceLinks(ctx)
		if err != nil {
			return eris.Wrap(err, "count source links")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(map[string]int{
			"master_leads": leads,
			"source_links": links,
		}), "encode status")
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

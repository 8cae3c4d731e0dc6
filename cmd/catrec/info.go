package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/davidvella/concat"
	"github.com/davidvella/concat/internal/config"
	"github.com/davidvella/concat/record"
	"github.com/spf13/cobra"
)

type rangeInfo struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Records  int    `json:"records"`
	Sized    bool   `json:"sized"`
	Common   bool   `json:"common"`
}

func describe(name string, r concat.Range[record.Record]) rangeInfo {
	info := rangeInfo{
		Name:     name,
		Category: concat.CategoryOf(r).String(),
	}
	info.Records, info.Sized = concat.Size(r)
	if !info.Sized {
		info.Records = concat.Count(r)
	}
	_, info.Common = r.(concat.CommonRange[record.Record])
	return info
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info [SRC...]",
		Short: "Describe each source and their concatenation",
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, v, err := a.open(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer a.close(sources)

			infos := make([]rangeInfo, 0, len(sources)+1)
			for _, src := range sources {
				infos = append(infos, describe(src.Name, src.Range))
			}
			infos = append(infos, describe("(all)", v))
			if err := readErr(sources); err != nil {
				return err
			}

			if a.cfg.Output.Format == config.FormatJSON {
				return json.NewEncoder(a.out).Encode(infos)
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SOURCE\tCATEGORY\tRECORDS\tSIZED\tCOMMON")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%t\n",
					info.Name, info.Category, info.Records, info.Sized, info.Common)
			}
			return tw.Flush()
		},
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/formgrid-dev/formgrid/pkg/config"
	"github.com/formgrid-dev/formgrid/pkg/grid"
)

type gridResponse struct {
	Name       string              `json:"name"`
	PrimaryKey string              `json:"primaryKey"`
	Columns    []grid.ColumnConfig `json:"columns"`
	Rows       []grid.Row          `json:"rows"`
	Footer     map[string]string   `json:"footer"`
	Total      int                 `json:"total"`
}

func newGridCmd() *cobra.Command {
	var search string
	var size int
	cmd := &cobra.Command{
		Use:   "grid <table>",
		Short: "Load a table grid and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := config.Resolve(cmd)
			if err != nil {
				return err
			}
			var out gridResponse
			cli := resty.New().SetAuthToken(resolved.Token)
			req := cli.R().SetResult(&out)
			if search != "" {
				req.SetQueryParam("search", search)
			}
			if size > 0 {
				req.SetQueryParam("size", fmt.Sprint(size))
			}
			resp, err := req.Get(strings.TrimSuffix(resolved.APIURL, "/") + "/v1/tables/" + args[0] + "/grid")
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("%s", resp.Status())
			}
			return printGrid(out)
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "quick filter")
	cmd.Flags().IntVar(&size, "size", 0, "page size")
	return cmd
}

func printGrid(out gridResponse) error {
	format, err := rootCmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if format == "json" {
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}
	var headers []string
	var fields []string
	for _, c := range out.Columns {
		if !c.Visible || c.Field == grid.ActionsColumn {
			continue
		}
		headers = append(headers, c.Title)
		fields = append(fields, c.Field)
	}
	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader(headers)
	for _, r := range out.Rows {
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = grid.Cell(r, f)
		}
		tw.Append(row)
	}
	if len(out.Footer) > 0 {
		footer := make([]string, len(fields))
		for i, f := range fields {
			footer[i] = out.Footer[f]
		}
		tw.SetFooter(footer)
	}
	tw.Render()
	fmt.Printf("%d rows\n", out.Total)
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/formgrid-dev/formgrid/pkg/config"
	"github.com/formgrid-dev/formgrid/pkg/schema"
)

func newSchemaCmd() *cobra.Command {
	var pk string
	var diffFile string
	cmd := &cobra.Command{
		Use:   "schema <table>",
		Short: "Show the resolved form schema of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := config.Resolve(cmd)
			if err != nil {
				return err
			}
			var fields []schema.FieldDescriptor
			cli := resty.New().SetAuthToken(resolved.Token)
			resp, err := cli.R().
				SetQueryParam("pk", pk).
				SetResult(&fields).
				Get(strings.TrimSuffix(resolved.APIURL, "/") + "/v1/tables/" + args[0] + "/schema")
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("%s", resp.Status())
			}
			if diffFile != "" {
				return diffSchema(fields, diffFile)
			}
			return printSchema(cmd, fields)
		},
	}
	cmd.Flags().StringVar(&pk, "pk", "", "primary key column (default derived from table name)")
	cmd.Flags().StringVar(&diffFile, "diff", "", "compare against a saved schema JSON file")
	return cmd
}

func printSchema(cmd *cobra.Command, fields []schema.FieldDescriptor) error {
	format, err := rootCmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if format == "json" {
		b, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}
	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"Name", "Label", "Type", "Widget", "Required", "PK", "Reference"})
	for _, f := range fields {
		tw.Append([]string{
			f.Name,
			f.Label,
			string(f.DataType),
			f.Widget.String(),
			strconv.FormatBool(f.Required),
			strconv.FormatBool(f.IsPrimaryKey),
			f.ReferenceTable,
		})
	}
	tw.Render()
	return nil
}

// diffSchema prints a unified diff between the live schema and a saved copy,
// useful for spotting backend schema drift.
func diffSchema(fields []schema.FieldDescriptor, path string) error {
	saved, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	live, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return err
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(saved)),
		B:        difflib.SplitLines(string(live) + "\n"),
		FromFile: path,
		ToFile:   "live",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Println("schemas match")
		return nil
	}
	fmt.Print(text)
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/formgrid-dev/formgrid/pkg/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Manage CLI profiles"}
	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUseCmd())
	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load()
			if err != nil {
				return err
			}
			tw := tablewriter.NewWriter(os.Stdout)
			tw.SetHeader([]string{"Name", "API URL", "Active"})
			for name, p := range f.Profiles {
				active := ""
				if name == f.Active {
					active = "*"
				}
				tw.Append([]string{name, p.APIURL, active})
			}
			tw.Render()
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var apiURL, token string
	cmd := &cobra.Command{
		Use:   "set <profile>",
		Short: "Create or update a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load()
			if err != nil {
				return err
			}
			p := f.Profiles[args[0]]
			p.Name = args[0]
			if apiURL != "" {
				p.APIURL = apiURL
			}
			if token != "" {
				p.Token = token
			}
			f.Profiles[args[0]] = p
			return f.Save()
		},
	}
	cmd.Flags().StringVar(&apiURL, "api-url", "", "API base URL")
	cmd.Flags().StringVar(&token, "token", "", "bearer token")
	return cmd
}

func newConfigUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <profile>",
		Short: "Switch the active profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load()
			if err != nil {
				return err
			}
			if _, ok := f.Profiles[args[0]]; !ok {
				return fmt.Errorf("unknown profile %q", args[0])
			}
			f.Active = args[0]
			return f.Save()
		},
	}
}

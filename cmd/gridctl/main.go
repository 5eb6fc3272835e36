package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{Use: "gridctl"}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "FormGrid API base URL")
	rootCmd.PersistentFlags().String("token", "", "Bearer token for the API")
	rootCmd.PersistentFlags().String("profile", "", "Profile name in config (overrides active)")
	rootCmd.PersistentFlags().String("output", "table", "Output format (table|json)")

	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newGridCmd())
	rootCmd.AddCommand(newPolicyCmd())
	rootCmd.AddCommand(newConfigCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

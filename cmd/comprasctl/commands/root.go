// Package commands implements the comprasctl command tree: converting
// exported workbooks to JSON and uploading records to the cloud sinks.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"arcompras/comprasworker/logger"
)

var rootCmd = &cobra.Command{
	Use:   "comprasctl",
	Short: "Tooling around the procurement scraper exports",
	Long: `comprasctl converts the Excel workbooks produced by the scrapers into
JSON and pushes the records into BigQuery and Firestore.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		godotenv.Load()
		logger.Init()
	},
	SilenceUsage: true,
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(bigqueryCmd)
	rootCmd.AddCommand(firestoreCmd)
}

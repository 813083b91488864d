package commands

import (
	"github.com/spf13/cobra"

	"arcompras/comprasworker/config"
	"arcompras/comprasworker/services/uploader"
)

var (
	bqProject     string
	bqDataset     string
	bqTable       string
	bqCredentials string
)

var bigqueryCmd = &cobra.Command{
	Use:   "bigquery <records.json>",
	Short: "Append converted records to the BigQuery table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := uploader.LoadRecords(args[0])
		if err != nil {
			return err
		}

		cfg := config.LoadConfig()
		if bqProject != "" {
			cfg.GCPProject = bqProject
		}
		if bqDataset != "" {
			cfg.BigQueryDataset = bqDataset
		}
		if bqTable != "" {
			cfg.BigQueryTable = bqTable
		}
		if bqCredentials != "" {
			cfg.GCPCredentials = bqCredentials
		}

		bq, err := uploader.NewBigQuery(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer bq.Close()

		return bq.Upload(cmd.Context(), rows)
	},
}

func init() {
	bigqueryCmd.Flags().StringVar(&bqProject, "project", "", "GCP project (default: GCP_PROJECT)")
	bigqueryCmd.Flags().StringVar(&bqDataset, "dataset", "", "dataset (default: BQ_DATASET)")
	bigqueryCmd.Flags().StringVar(&bqTable, "table", "", "table (default: BQ_TABLE)")
	bigqueryCmd.Flags().StringVar(&bqCredentials, "credentials", "", "service account key file (default: GCP_CREDENTIALS)")
}

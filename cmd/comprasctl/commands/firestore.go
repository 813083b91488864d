package commands

import (
	"github.com/spf13/cobra"

	"arcompras/comprasworker/config"
	"arcompras/comprasworker/services/uploader"
)

var (
	fsProject     string
	fsCollection  string
	fsCredentials string
	fsIDField     string
)

var firestoreCmd = &cobra.Command{
	Use:   "firestore <records.json>",
	Short: "Mirror converted records into the Firestore collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := uploader.LoadRecords(args[0])
		if err != nil {
			return err
		}

		cfg := config.LoadConfig()
		if fsProject != "" {
			cfg.GCPProject = fsProject
		}
		if fsCollection != "" {
			cfg.FirestoreCollection = fsCollection
		}
		if fsCredentials != "" {
			cfg.GCPCredentials = fsCredentials
		}

		fs, err := uploader.NewFirestore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer fs.Close()

		return fs.Upload(cmd.Context(), rows, fsIDField)
	},
}

func init() {
	firestoreCmd.Flags().StringVar(&fsProject, "project", "", "GCP project (default: GCP_PROJECT)")
	firestoreCmd.Flags().StringVar(&fsCollection, "collection", "", "collection (default: FIRESTORE_COLLECTION)")
	firestoreCmd.Flags().StringVar(&fsCredentials, "credentials", "", "service account key file (default: GCP_CREDENTIALS)")
	firestoreCmd.Flags().StringVar(&fsIDField, "id-field", "numero_proceso", "row key used as document identifier")
}

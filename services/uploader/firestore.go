package uploader

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"arcompras/comprasworker/config"
	"arcompras/comprasworker/logger"
	apperrors "arcompras/comprasworker/pkg/errors"
)

// Firestore mirrors process rows into a document collection, keyed by the
// sanitized process number so re-uploads overwrite instead of duplicating.
type Firestore struct {
	client     *firestore.Client
	collection string
	log        *logger.Logger
}

// NewFirestore creates the document-store uploader from the run configuration.
func NewFirestore(ctx context.Context, cfg *config.Config) (*Firestore, error) {
	if cfg.GCPProject == "" {
		return nil, apperrors.NewConfiguration("GCP_PROJECT must be set for Firestore uploads", nil)
	}

	var opts []option.ClientOption
	if cfg.GCPCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCPCredentials))
	}

	client, err := firestore.NewClient(ctx, cfg.GCPProject, opts...)
	if err != nil {
		return nil, apperrors.NewUpload("firestore", "failed to create client", err)
	}

	return &Firestore{
		client:     client,
		collection: cfg.FirestoreCollection,
		log:        logger.ForUploader("firestore"),
	}, nil
}

// Upload writes each row as one document. idField names the row key used as
// document identifier.
func (u *Firestore) Upload(ctx context.Context, rows []map[string]interface{}, idField string) error {
	coll := u.client.Collection(u.collection)

	for i, row := range rows {
		doc := PrepareRow(row)
		doc["fecha_carga"] = firestore.ServerTimestamp

		id := DocID(row, idField, i)
		if _, err := coll.Doc(id).Set(ctx, doc); err != nil {
			return apperrors.NewUpload("firestore", "failed to write document "+id, err)
		}
	}

	u.log.Info().Int("rows", len(rows)).Str("collection", u.collection).Msg("Uploaded documents")
	return nil
}

// Close releases the underlying client.
func (u *Firestore) Close() error {
	return u.client.Close()
}

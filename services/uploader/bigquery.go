package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"

	"arcompras/comprasworker/config"
	"arcompras/comprasworker/logger"
	apperrors "arcompras/comprasworker/pkg/errors"
)

// BigQuery appends process rows to the warehouse table through load jobs.
type BigQuery struct {
	client  *bigquery.Client
	dataset string
	table   string
	log     *logger.Logger
}

// NewBigQuery creates the warehouse uploader from the run configuration.
func NewBigQuery(ctx context.Context, cfg *config.Config) (*BigQuery, error) {
	if cfg.GCPProject == "" {
		return nil, apperrors.NewConfiguration("GCP_PROJECT must be set for BigQuery uploads", nil)
	}

	var opts []option.ClientOption
	if cfg.GCPCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCPCredentials))
	}

	client, err := bigquery.NewClient(ctx, cfg.GCPProject, opts...)
	if err != nil {
		return nil, apperrors.NewUpload("bigquery", "failed to create client", err)
	}

	return &BigQuery{
		client:  client,
		dataset: cfg.BigQueryDataset,
		table:   cfg.BigQueryTable,
		log:     logger.ForUploader("bigquery"),
	}, nil
}

// Upload normalizes the rows and appends them to the table as one newline
// delimited JSON load job.
func (u *BigQuery) Upload(ctx context.Context, rows []map[string]interface{}) error {
	if len(rows) == 0 {
		u.log.Info().Msg("Nothing to upload")
		return nil
	}

	loadedAt := time.Now().UTC().Format(time.RFC3339)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, row := range rows {
		prepared := PrepareRow(row)
		prepared["doc_id"] = DocID(row, "numero_proceso", i)
		prepared["fecha_carga"] = loadedAt
		if err := enc.Encode(prepared); err != nil {
			return apperrors.NewUpload("bigquery", "failed to encode row", err)
		}
	}

	source := bigquery.NewReaderSource(&buf)
	source.SourceFormat = bigquery.JSON

	loader := u.client.Dataset(u.dataset).Table(u.table).LoaderFrom(source)
	loader.WriteDisposition = bigquery.WriteAppend

	job, err := loader.Run(ctx)
	if err != nil {
		return apperrors.NewUpload("bigquery", "failed to start load job", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return apperrors.NewUpload("bigquery", "load job failed", err)
	}
	if err := status.Err(); err != nil {
		return apperrors.NewUpload("bigquery", "load job completed with errors", err)
	}

	u.log.Info().Int("rows", len(rows)).Str("dataset", u.dataset).Str("table", u.table).Msg("Uploaded rows")
	return nil
}

// Close releases the underlying client.
func (u *BigQuery) Close() error {
	return u.client.Close()
}

// Package evidence persists completed analysis snapshots to object
// storage for compliance retention. Archiving is best-effort from the
// engine's point of view: a failed upload is reported to the caller but
// never fails the analysis that produced the snapshot.
package evidence

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang/snappy"

	"github.com/trestleaml/networkengine/pkg/logging"
)

// ObjectPutter is the slice of the S3 API the archiver needs; *s3.Client
// satisfies it, tests substitute a fake.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Params configures a new Store.
//
// Endpoint may point at S3-compatible storage (MinIO and the like).
// Static credentials are used when AccessKey is set; otherwise the
// default AWS credential chain applies.
type Params struct {
	Bucket    string
	Prefix    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Store archives analysis snapshots under
// <prefix>/<center>/<analysis-id>.json.snappy.
type Store struct {
	bucket string
	prefix string
	client ObjectPutter
	logger logging.Logger
}

// NewStoreWithClient creates a Store on an existing client. Useful when
// the caller already holds a configured *s3.Client.
func NewStoreWithClient(bucket, prefix string, client ObjectPutter, logger logging.Logger) *Store {
	if prefix == "" {
		prefix = "analyses"
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Store{
		bucket: bucket,
		prefix: prefix,
		client: client,
		logger: logger.With(logging.Component("evidence")),
	}
}

// NewStore creates a Store with its own S3 client built from params.
func NewStore(ctx context.Context, params Params, logger logging.Logger) (*Store, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(params.Region),
	}
	if params.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(params.Endpoint))
	}
	if params.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKey,
			params.SecretKey,
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewStoreWithClient(params.Bucket, params.Prefix, s3.NewFromConfig(cfg), logger), nil
}

// Archive compresses and uploads one snapshot, returning the object key.
func (s *Store) Archive(ctx context.Context, centerID, analysisID string, payload []byte) (string, error) {
	key := fmt.Sprintf("%s/%s/%s.json.snappy", s.prefix, centerID, analysisID)
	compressed := snappy.Encode(nil, payload)

	start := time.Now()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(compressed),
		ContentType: aws.String("application/x-snappy"),
		Metadata: map[string]string{
			"center-entity-id": centerID,
			"analysis-id":      analysisID,
		},
	})
	if err != nil {
		s.logger.Error("snapshot upload failed",
			logging.CenterID(centerID),
			logging.AnalysisID(analysisID),
			logging.Error(err))
		return "", fmt.Errorf("archive %s: %w", key, err)
	}

	s.logger.Info("snapshot archived",
		logging.CenterID(centerID),
		logging.AnalysisID(analysisID),
		logging.String("key", key),
		logging.Int("compressed_bytes", len(compressed)),
		logging.Latency(time.Since(start)))
	return key, nil
}

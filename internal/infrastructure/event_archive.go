package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"Wildfund/config"
	"Wildfund/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// EventArchive guarda o payload bruto de cada evento verificado em
// <prefixo>/<tipo>/<id>.json.
type EventArchive struct {
	client  objectPutter
	bucket  string
	prefix  string
	timeout time.Duration
}

func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Archive.Region))
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar configuracao AWS: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

func NewEventArchive(client objectPutter, cfg *config.Config) *EventArchive {
	logger.Info().
		Str("bucket", cfg.Archive.Bucket).
		Str("prefix", cfg.Archive.Prefix).
		Msg("Arquivo de eventos habilitado")
	return &EventArchive{
		client:  client,
		bucket:  cfg.Archive.Bucket,
		prefix:  cfg.Archive.Prefix,
		timeout: 5 * time.Second,
	}
}

func (a *EventArchive) Key(eventType, eventID string) string {
	return path.Join(a.prefix, eventType, eventID+".json")
}

func (a *EventArchive) Archive(ctx context.Context, eventType, eventID string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.Key(eventType, eventID)),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("falha ao enviar evento %s ao S3: %w", eventID, err)
	}
	return nil
}

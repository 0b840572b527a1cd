package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"

	appconfig "copier-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archiver uploads rendered invoice PDFs to the archive bucket. A nil
// Archiver (archive disabled) is safe to call.
type Archiver struct {
	client *s3.Client
	bucket string
}

func NewArchiver(ctx context.Context, cfg *appconfig.Config) (*Archiver, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}

	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Archive.Region),
	}
	if cfg.Archive.AccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Archive.AccessKey, cfg.Archive.SecretKey, "")))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load archive config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Archive.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Archive.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Archiver{client: client, bucket: cfg.Archive.Bucket}, nil
}

// StoreInvoicePDF archives a rendered invoice under invoices/<invoice_no>.pdf
func (a *Archiver) StoreInvoicePDF(ctx context.Context, invoiceNo string, pdf []byte) error {
	if a == nil {
		return nil
	}
	key := fmt.Sprintf("invoices/%s.pdf", invoiceNo)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	log.Printf("[Archive] Stored %s (%d bytes)", key, len(pdf))
	return nil
}

package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// S3API is the slice of the S3 client the emitter uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
}

// S3Emitter uploads each report under a timestamped key and mirrors it to
// a fixed "latest" key, so dashboards can poll one stable object while the
// full history stays browsable.
type S3Emitter struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Emitter creates an S3 emitter for the given bucket and key prefix.
func NewS3Emitter(client S3API, bucket, prefix string) *S3Emitter {
	return &S3Emitter{client: client, bucket: bucket, prefix: prefix}
}

// Emit uploads the report. The timestamped key derives from the scan
// window's end, so re-emitting the same report overwrites rather than
// duplicates.
func (e *S3Emitter) Emit(ctx context.Context, report *types.WasteReport) error {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	key := e.reportKey(report)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload report to s3://%s/%s: %w", e.bucket, key, err)
	}

	latest := e.latestKey()
	_, err = e.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(e.bucket),
		Key:        aws.String(latest),
		CopySource: aws.String(path.Join(e.bucket, key)),
	})
	if err != nil {
		return fmt.Errorf("failed to update s3://%s/%s: %w", e.bucket, latest, err)
	}
	return nil
}

// Close is a no-op; the S3 client carries no connection state to release.
func (e *S3Emitter) Close() error {
	return nil
}

func (e *S3Emitter) reportKey(report *types.WasteReport) string {
	stamp := report.ScanWindow.End.UTC().Format("2006-01-02T15-04-05")
	return path.Join(e.prefix, fmt.Sprintf("waste-report-%s.json", stamp))
}

func (e *S3Emitter) latestKey() string {
	return path.Join(e.prefix, "waste-report-latest.json")
}

package sink

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// ParseS3URL 拆分 s3://bucket/key
func ParseS3URL(u string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(u, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// S3Sink 上传到一个 bucket，凭证走 SDK 默认链
type S3Sink struct {
	bucket   string
	uploader *s3manager.Uploader
}

func NewS3Sink(bucket, region string) (*S3Sink, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return &S3Sink{bucket: bucket, uploader: s3manager.NewUploader(sess)}, nil
}

func (s *S3Sink) Put(ctx context.Context, key string, data []byte) error {
	data, err := Encode(key, data)
	if err != nil {
		return err
	}
	input := &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(key)),
	}
	if strings.EqualFold(path.Ext(key), ".svgz") {
		input.ContentEncoding = aws.String("gzip")
	}
	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func contentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".svg", ".svgz":
		return "image/svg+xml"
	case ".bas":
		return "text/plain; charset=utf-8"
	}
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"

	cfg "github.com/vissocial/pipeline/configs"
)

// ArtifactStore keeps render artifacts on storage the pipeline controls
// instead of the generator's ephemeral URLs.
type ArtifactStore interface {
	MirrorImage(ctx context.Context, srcURL, key string) (string, error)
}

type R2Service struct {
	config cfg.Config
	client *s3.Client
	hc     *http.Client
}

func NewR2Service(c cfg.Config) (*R2Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.R2.AccessKey, c.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2.AccountID))
	})

	return &R2Service{
		config: c,
		client: client,
		hc:     &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

func (r *R2Service) UploadToR2(ctx context.Context, key string, file []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	_, err := r.client.PutObject(ctx, input)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// MirrorImage downloads the generated image and re-uploads it under the
// given key, returning the public URL. The file extension is derived from
// the sniffed content type, not from the source URL.
func (r *R2Service) MirrorImage(ctx context.Context, srcURL, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", srcURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.hc.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code downloading artifact: %d", resp.StatusCode)
	}

	file, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	contentType := "image/png"
	ext := "png"
	if kind, err := filetype.Match(file); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
		ext = kind.Extension
	}

	fullKey := key + "." + ext
	if err := r.UploadToR2(ctx, fullKey, file, contentType); err != nil {
		return "", err
	}

	publicURL := r.config.R2.PublicBase + "/" + path.Clean(fullKey)
	return publicURL, nil
}

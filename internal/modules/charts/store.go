package charts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Store persists rendered charts and returns the URL they are served from.
type Store interface {
	Save(ctx context.Context, name string, png []byte) (string, error)
}

// FileName is the object name a symbol's chart is stored under.
func FileName(symbol string) string {
	return symbol + "_dividends.png"
}

// LocalStore writes charts into a directory served by the HTTP server.
type LocalStore struct {
	dir       string
	urlPrefix string
}

// NewLocalStore creates a store writing to dir, with URLs rooted at urlPrefix.
func NewLocalStore(dir, urlPrefix string) *LocalStore {
	return &LocalStore{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}
}

// Dir is the directory charts are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes the image, overwriting any previous chart of the same name.
func (s *LocalStore) Save(_ context.Context, name string, png []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create chart directory: %w", err)
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", fmt.Errorf("failed to write chart: %w", err)
	}

	return s.urlPrefix + "/" + filepath.Base(name), nil
}

// R2Config holds Cloudflare R2 credentials.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

// R2Store uploads charts to a Cloudflare R2 bucket through the S3 API.
type R2Store struct {
	uploader  *manager.Uploader
	bucket    string
	publicURL string
	log       zerolog.Logger
}

// NewR2Store creates an R2-backed chart store.
func NewR2Store(ctx context.Context, cfg R2Config, log zerolog.Logger) (*R2Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	})

	return &R2Store{
		uploader:  manager.NewUploader(client),
		bucket:    cfg.BucketName,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		log:       log.With().Str("store", "r2").Logger(),
	}, nil
}

// Save uploads the image under charts/<name>.
func (s *R2Store) Save(ctx context.Context, name string, png []byte) (string, error) {
	key := "charts/" + name

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(png),
		ContentType:  aws.String("image/png"),
		CacheControl: aws.String("public, max-age=3600"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload chart to R2: %w", err)
	}

	s.log.Debug().Str("key", key).Int("bytes", len(png)).Msg("Uploaded chart")
	return s.publicURL + "/" + key, nil
}

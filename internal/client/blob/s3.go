package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/groupfeed/internal/common"
)

// referenceTTL bounds how long a resolved retrieval URL stays valid.
const referenceTTL = 15 * time.Minute

// keyPrefix is the bucket path all attachment objects live under.
const keyPrefix = "chat-images/"

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Config holds settings for the S3-compatible backend (MinIO in development).
type Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	BaseEndpoint string
}

// S3Publisher implements Publisher over aws-sdk-go-v2.
type S3Publisher struct {
	cfg     Config
	client  *s3.Client
	presign *s3.PresignClient
}

func NewS3Publisher(ctx context.Context, cfg Config) (*S3Publisher, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Publisher{cfg: cfg, client: client, presign: s3.NewPresignClient(client)}, nil
}

// ObjectKey generates a globally unique storage key from a random v4 UUID,
// keeping the original file extension when one is known.
func ObjectKey(extensionHint string) string {
	ext := strings.TrimSpace(extensionHint)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return keyPrefix + uuid.NewString() + ext
}

func (p *S3Publisher) Store(ctx context.Context, data []byte, extensionHint string) (string, error) {
	key := ObjectKey(extensionHint)

	_, err := putObject(p.client, ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("%w: store object %s: %v", common.ErrTransport, key, err)
	}

	return key, nil
}

func (p *S3Publisher) ResolveReference(ctx context.Context, key string) (string, error) {
	req, err := presignGetObject(p.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(referenceTTL))
	if err != nil {
		return "", fmt.Errorf("%w: resolve reference for %s: %v", common.ErrTransport, key, err)
	}

	return req.URL, nil
}

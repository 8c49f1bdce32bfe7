package storagenode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/corefs/docfs/internal/logger"
	"github.com/corefs/docfs/pkg/config"
	"github.com/corefs/docfs/pkg/metrics"
)

// coldTier offloads checkpoint content to S3 (or an S3-compatible store),
// giving a node's checkpoint tree a durability tier independent of its own
// disk (spec.md §6's checkpoint tree is otherwise node-local only).
// Checkpoint failures here are logged, not propagated: the local checkpoint
// copy already satisfies CHECKPOINT/REVERT, so cold-tier offload is
// best-effort.
type coldTier struct {
	client  *s3.Client
	bucket  string
	prefix  string
	metrics metrics.ColdTierMetrics
}

// newColdTier builds a coldTier from cfg, or returns nil if disabled. Errors
// connecting to AWS are returned rather than silently disabling the tier,
// since an operator who enabled it wants to know immediately if credentials
// are missing.
func newColdTier(ctx context.Context, cfg config.ColdTierConfig, m metrics.ColdTierMetrics) (*coldTier, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	optFns := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("storagenode: load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &coldTier{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, metrics: m}, nil
}

func (ct *coldTier) key(name, tag string) string {
	key := name + "." + tag
	if ct.prefix != "" {
		return ct.prefix + "/" + key
	}
	return key
}

// Put uploads a checkpoint's bytes under its node-relative key.
func (ct *coldTier) Put(ctx context.Context, name, tag string, content []byte) error {
	if ct == nil {
		return nil
	}
	start := time.Now()
	_, err := ct.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(ct.bucket),
		Key:    aws.String(ct.key(name, tag)),
		Body:   bytes.NewReader(content),
	})
	if ct.metrics != nil {
		ct.metrics.ObserveOperation("put", time.Since(start), err)
		if err == nil {
			ct.metrics.RecordBytes("put", int64(len(content)))
		}
	}
	if err != nil {
		logger.Warn("coldtier: checkpoint upload failed", "name", name, "tag", tag, "error", err)
	}
	return err
}

// Get downloads a checkpoint's bytes, used as a fallback when the local
// checkpoint copy is missing (e.g. after node storage loss).
func (ct *coldTier) Get(ctx context.Context, name, tag string) ([]byte, error) {
	if ct == nil {
		return nil, errors.New("storagenode: cold tier not enabled")
	}
	start := time.Now()
	out, err := ct.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ct.bucket),
		Key:    aws.String(ct.key(name, tag)),
	})
	if ct.metrics != nil {
		ct.metrics.ObserveOperation("get", time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if ct.metrics != nil && err == nil {
		ct.metrics.RecordBytes("get", int64(len(data)))
	}
	return data, err
}

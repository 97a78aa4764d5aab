package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/hoyle1974/weekly/storage"
)

type config struct {
	Source   string
	URI      string
	Bucket   string
	Region   string
	Endpoint string
	LogLevel string
}

func getEnvString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// loadConfig reads an optional .env file, then flags. Environment values
// become the flag defaults.
func loadConfig(args []string) (config, []string, error) {
	_ = godotenv.Load()

	var cfg config
	fs := flag.NewFlagSet("weekly", flag.ContinueOnError)
	fs.StringVarP(&cfg.Source, "source", "s", getEnvString("WEEKLY_SOURCE", "disk"), "Where schedules are stored: memory, disk or s3")
	fs.StringVarP(&cfg.URI, "uri", "u", getEnvString("WEEKLY_URI", "."), "Base directory for the disk source")
	fs.StringVarP(&cfg.Bucket, "bucket", "b", getEnvString("WEEKLY_BUCKET", ""), "Bucket for the s3 source")
	fs.StringVar(&cfg.Region, "region", getEnvString("WEEKLY_REGION", "us-east-1"), "Region for the s3 source")
	fs.StringVar(&cfg.Endpoint, "endpoint", getEnvString("WEEKLY_ENDPOINT", ""), "Custom S3 endpoint (LocalStack, MinIO)")
	fs.StringVarP(&cfg.LogLevel, "log-level", "l", getEnvString("WEEKLY_LOG_LEVEL", "warn"), "debug, info, warn or error")
	fs.Usage = func() {
		fs.Output().Write([]byte(usage))
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return cfg, nil, err
	}
	return cfg, fs.Args(), nil
}

func newStorage(ctx context.Context, cfg config) (storage.System, error) {
	switch cfg.Source {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "disk":
		return storage.NewDiskStorage(cfg.URI), nil
	case "s3":
		if cfg.Bucket == "" {
			return nil, errors.New("the s3 source needs --bucket")
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, errors.Wrap(err, "can not load aws config")
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		})
		return storage.NewS3Storage(client, cfg.Bucket), nil
	default:
		return nil, errors.Newf("unsupported storage system: %s", cfg.Source)
	}
}

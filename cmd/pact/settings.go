package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/lpjones/PACT/blobstore"
	"github.com/lpjones/PACT/cluster"
	"github.com/lpjones/PACT/render"
)

const (
	keyGapGB         = "gap_gb"
	keyMinSamples    = "min_samples"
	keyBins          = "bins"
	keyJobs          = "jobs"
	keyMemoryLimitMB = "memory_limit_mb"
	keyUploadRate    = "upload.bytes_per_sec"
	keyS3Region      = "s3.region"
	keyS3Endpoint    = "s3.endpoint"
	keyS3AccessKey   = "s3.access_key"
	keyS3SecretKey   = "s3.secret_key"
	keyMinioAccess   = "minio.access_key"
	keyMinioSecret   = "minio.secret_key"
	keyMinioSecure   = "minio.secure"
	keyCatalogTable  = "catalog.table"
	keyCatalogRegion = "catalog.region"
	keyCatalogURL    = "catalog.endpoint"
	keyReportCodec   = "report.codec"
	keyCacheMB       = "cache.capacity_mb"
	keyCacheBlockKB  = "cache.block_kb"
)

func newSettings() *viper.Viper {
	v := viper.New()

	v.SetDefault(keyGapGB, float64(cluster.DefaultGapThreshold)/cluster.GiB)
	v.SetDefault(keyMinSamples, cluster.DefaultMinSamples)
	v.SetDefault(keyBins, render.DefaultBins)
	v.SetDefault(keyJobs, 1)
	v.SetDefault(keyMemoryLimitMB, 0)
	v.SetDefault(keyUploadRate, 0)
	v.SetDefault(keyMinioSecure, true)
	v.SetDefault(keyReportCodec, "go-json")
	v.SetDefault(keyCacheMB, 64)
	v.SetDefault(keyCacheBlockKB, blobstore.DefaultBlockSize>>10)

	v.SetEnvPrefix("PACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadSettings reads the YAML file at path. A missing default file is
// not an error; an explicitly named one is.
func loadSettings(v *viper.Viper, path string, explicit bool) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !explicit && (errors.As(err, &notFound) || isNotExist(err)) {
			return nil
		}
		return fmt.Errorf("read settings %s: %w", path, err)
	}
	return nil
}

func gapBytes(v *viper.Viper) (uint64, error) {
	gb := v.GetFloat64(keyGapGB)
	if gb <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %g", keyGapGB, gb)
	}
	return uint64(gb * cluster.GiB), nil
}

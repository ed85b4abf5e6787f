package flags

import (
	"log/slog"
	"time"

	"github.com/MDWio/ohif-viewer/api"
	"github.com/MDWio/ohif-viewer/common"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *api.HTTPServerConfig {
	return &api.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		DrainDuration:            time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             120 * time.Second,
		RequestTimeout:           cCtx.Duration(RequestTimeoutFlag.Name),
		MaxUploadSize:            cCtx.Int64(MaxUploadSizeFlag.Name),
	}
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: "dicom-loader",
	Usage: "add 'service' tag to logs",
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}
var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics, empty to disable",
}
var MaxUploadSizeFlag = &cli.Int64Flag{
	Name:  "max-upload-size",
	Value: 512 << 20,
	Usage: "maximum size in bytes of a file registered over HTTP",
}

var BlobStoreFlag = &cli.StringSliceFlag{
	Name:    "blob-store",
	Value:   cli.NewStringSlice("mem://"),
	EnvVars: []string{"BLOB_STORE"},
	Usage:   "blob store URI for registered files (mem://, file://, s3://, ipfs://); repeat for redundancy",
}
var ImageCacheSizeFlag = &cli.IntFlag{
	Name:  "image-cache-size",
	Value: 256,
	Usage: "number of images kept in the in-memory image cache",
}
var AuthTokenFlag = &cli.StringFlag{
	Name:    "auth-token",
	EnvVars: []string{"DICOMWEB_AUTH_TOKEN"},
	Usage:   "bearer token sent to DICOMweb servers when a dataset carries no authorization headers",
}
var RetryAttemptsFlag = &cli.IntFlag{
	Name:  "retry-attempts",
	Value: 3,
	Usage: "total attempts for a WADO-RS retrieval, 1 disables retries",
}
var RetryInitialDelayFlag = &cli.DurationFlag{
	Name:  "retry-initial-delay",
	Value: 500 * time.Millisecond,
	Usage: "delay before the first retry; doubled on every further retry",
}
var RetryMaxDelayFlag = &cli.DurationFlag{
	Name:  "retry-max-delay",
	Value: 5 * time.Second,
	Usage: "upper bound of the delay between retries",
}
var RequestTimeoutFlag = &cli.DurationFlag{
	Name:  "request-timeout",
	Value: 60 * time.Second,
	Usage: "timeout of a single resolution including retries, 0 for none",
}

var LogFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

var ServerFlags = []cli.Flag{
	ListenAddrFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
	MaxUploadSizeFlag,
}

var LoaderFlags = []cli.Flag{
	BlobStoreFlag,
	ImageCacheSizeFlag,
	AuthTokenFlag,
	RetryAttemptsFlag,
	RetryInitialDelayFlag,
	RetryMaxDelayFlag,
	RequestTimeoutFlag,
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/meltwater/blobresolver/credential"
	"github.com/meltwater/blobresolver/internal"
	"github.com/meltwater/blobresolver/internal/plugin"
	"github.com/meltwater/blobresolver/storage/backend/azure"
)

var version = "0.0.0"

func main() {
	app := cli.NewApp()
	app.Name = "blobresolver"
	app.Usage = "Reads Azure blobs by URL using whatever Azure identity the environment provides"
	app.Version = version
	app.Before = loadEnvFile
	app.Flags = []cli.Flag{
		// Logging Config flags

		&cli.StringFlag{
			Name:    "log.level",
			Aliases: []string{"ll"},
			Usage:   "log filtering level. ('error', 'warn', 'info', 'debug')",
			Value:   internal.LogLevelInfo,
			EnvVars: []string{"BLOBRESOLVER_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log.format",
			Aliases: []string{"lf"},
			Usage:   "log format to use. ('logfmt', 'json')",
			Value:   internal.LogFormatLogfmt,
			EnvVars: []string{"BLOBRESOLVER_LOG_FORMAT"},
		},
		&cli.StringFlag{
			Name:    "env-file",
			Usage:   "load environment variables such as AZURE_STORAGE_BEARER_TOKEN from a dotenv file",
			EnvVars: []string{"BLOBRESOLVER_ENV_FILE"},
		},

		// Azure specific Config flags

		&cli.StringFlag{
			Name:    "azure.cloud",
			Usage:   "Azure cloud. ('AzurePublicCloud', 'AzureChinaCloud', 'AzureUSGovernmentCloud')",
			Value:   "AzurePublicCloud",
			EnvVars: []string{"BLOBRESOLVER_AZURE_CLOUD", "AZURE_CLOUD"},
		},
		&cli.StringFlag{
			Name:    "azure.blob-storage-url",
			Usage:   "blob endpoint domain suffix, defaults to the suffix of the cloud",
			EnvVars: []string{"BLOBRESOLVER_AZURE_BLOB_STORAGE_URL"},
		},
		&cli.BoolFlag{
			Name:    "azure.azurite",
			Usage:   "send requests to the Azurite emulator",
			EnvVars: []string{"BLOBRESOLVER_AZURE_AZURITE"},
		},
		&cli.StringFlag{
			Name:    "azure.azurite-url",
			Usage:   "Azurite blob endpoint host and port",
			Value:   azure.DefaultAzuriteURL,
			EnvVars: []string{"BLOBRESOLVER_AZURE_AZURITE_URL"},
		},
		&cli.IntFlag{
			Name:    "azure.max-retry-requests",
			Usage:   "maximum number of retries of a blob request",
			Value:   azure.DefaultBlobMaxRetryRequests,
			EnvVars: []string{"BLOBRESOLVER_AZURE_MAX_RETRY_REQUESTS"},
		},

		// Credential Config flags

		&cli.BoolFlag{
			Name:    "lazy-credential",
			Usage:   "resolve the credential on the first blob request instead of at startup",
			EnvVars: []string{"BLOBRESOLVER_LAZY_CREDENTIAL"},
		},
		&cli.BoolFlag{
			Name:    "validate-credential",
			Usage:   "only select a credential after it acquired a storage token",
			EnvVars: []string{"BLOBRESOLVER_VALIDATE_CREDENTIAL"},
		},
		&cli.DurationFlag{
			Name:    "validate-credential.timeout",
			Usage:   "bound of a credential validation",
			Value:   credential.DefaultValidateTimeout,
			EnvVars: []string{"BLOBRESOLVER_VALIDATE_CREDENTIAL_TIMEOUT"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "timeout of a blob operation",
			Value:   plugin.DefaultStorageOperationTimeout,
			EnvVars: []string{"BLOBRESOLVER_TIMEOUT"},
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:      "exists",
			Usage:     "print whether the blob exists",
			ArgsUsage: "URL",
			Action: run(func(ctx context.Context, p *plugin.Plugin, c *cli.Context) error {
				return p.Exists(ctx, c.Args().First())
			}),
		},
		{
			Name:      "stat",
			Usage:     "print size and modification time of the blob",
			ArgsUsage: "URL",
			Action: run(func(ctx context.Context, p *plugin.Plugin, c *cli.Context) error {
				return p.Stat(ctx, c.Args().First())
			}),
		},
		{
			Name:      "get",
			Usage:     "download the blob",
			ArgsUsage: "URL",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "file to write to, stdout when empty or '-'",
				},
				&cli.BoolFlag{
					Name:    "decompress",
					Aliases: []string{"d"},
					Usage:   "decode gzip or zstd content encoding",
				},
			},
			Action: run(func(ctx context.Context, p *plugin.Plugin, c *cli.Context) error {
				return p.Get(ctx, c.Args().First(), c.String("output"), c.Bool("decompress"))
			}),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "blobresolver: %v\n", err)
		os.Exit(1)
	}
}

func loadEnvFile(c *cli.Context) error {
	file := c.String("env-file")
	if file == "" {
		return nil
	}

	if err := godotenv.Load(file); err != nil {
		return fmt.Errorf("load env file <%s>, %w", file, err)
	}

	return nil
}

type command func(ctx context.Context, p *plugin.Plugin, c *cli.Context) error

// run builds the plugin from the global flags and executes cmd with a context
// canceled on interrupt.
func run(cmd command) cli.ActionFunc {
	return func(c *cli.Context) error {
		logger := internal.NewLogger(c.String("log.level"), c.String("log.format"), c.App.Name)

		cfg := plugin.Config{
			LazyCredential:          c.Bool("lazy-credential"),
			ValidateCredential:      c.Bool("validate-credential"),
			ValidateTimeout:         c.Duration("validate-credential.timeout"),
			StorageOperationTimeout: c.Duration("timeout"),

			Azure: azure.Config{
				Cloud:            c.String("azure.cloud"),
				BlobStorageURL:   c.String("azure.blob-storage-url"),
				Azurite:          c.Bool("azure.azurite"),
				AzuriteURL:       c.String("azure.azurite-url"),
				MaxRetryRequests: c.Int("azure.max-retry-requests"),
			},
		}

		p, err := plugin.New(log.With(logger, "component", "plugin"), cfg)
		if err != nil {
			level.Error(logger).Log("msg", "failed to initialize", "err", err)

			if errors.Is(err, credential.ErrNoSuitableCredential) {
				return cli.Exit("no Azure credential available, set AZURE_STORAGE_BEARER_TOKEN or log in", 2)
			}

			return err
		}

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		start := time.Now()
		defer func() {
			level.Debug(logger).Log("msg", "command finished", "command", c.Command.Name, "took", time.Since(start))
		}()

		return cmd(ctx, p, c)
	}
}

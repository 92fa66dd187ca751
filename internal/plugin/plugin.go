// Package plugin implements the blobresolver commands on top of the azure backend.
package plugin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/meltwater/blobresolver/credential"
	"github.com/meltwater/blobresolver/internal"
	"github.com/meltwater/blobresolver/storage/backend/azure"
)

// DefaultStorageOperationTimeout bounds every blob operation unless configured otherwise.
const DefaultStorageOperationTimeout = time.Hour

// Error is a type that allows for error constants below.
type Error string

// Error returns a string representation of the error.
func (e Error) Error() string { return string(e) }

const (
	// ErrMissingURL - no blob URL argument was given.
	ErrMissingURL = Error("a blob url is required")

	// ErrUnsupportedEncoding - the blob content encoding cannot be decoded.
	ErrUnsupportedEncoding = Error("unsupported content encoding")
)

// Plugin runs blob commands and prints their results.
type Plugin struct {
	logger log.Logger
	cfg    Config

	registry *azure.Registry
	stdout   io.Writer
}

// New creates a Plugin. Extra options are handed to the azure registry.
func New(l log.Logger, c Config, opts ...azure.Option) (*Plugin, error) {
	if l == nil {
		l = log.NewNopLogger()
	}

	if c.StorageOperationTimeout <= 0 {
		c.StorageOperationTimeout = DefaultStorageOperationTimeout
	}

	// The bearer token override never needs the chain, don't fail startup on it.
	if _, ok := credential.BearerToken(c.LookupEnv); ok && !c.LazyCredential {
		level.Debug(l).Log("msg", "storage bearer token set, deferring credential resolution")

		c.LazyCredential = true
	}

	ropts := []azure.Option{
		azure.WithLazyCredential(c.LazyCredential),
		azure.WithLookupEnv(c.LookupEnv),
	}
	if c.ValidateCredential {
		ropts = append(ropts, azure.WithCredentialOptions(credential.WithTokenValidation(c.ValidateTimeout)))
	}

	registry, err := azure.New(log.With(l, "backend", "azure"), c.Azure, append(ropts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("initialize azure backend, %w", err)
	}

	return &Plugin{
		logger:   l,
		cfg:      c,
		registry: registry,
		stdout:   os.Stdout,
	}, nil
}

// SetOutput redirects what the commands print, stdout by default.
func (p *Plugin) SetOutput(w io.Writer) {
	p.stdout = w
}

// Exists prints whether the blob exists.
func (p *Plugin) Exists(ctx context.Context, rawURL string) error {
	b, err := p.blob(rawURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.StorageOperationTimeout)
	defer cancel()

	exists, err := b.Exists(ctx)
	if err != nil {
		return fmt.Errorf("exists, %w", err)
	}

	level.Debug(p.logger).Log("msg", "checked blob", "blob", b.Address(), "exists", exists)

	_, err = fmt.Fprintln(p.stdout, exists)

	return err
}

// Stat prints the size, last modification time and content type of the blob.
func (p *Plugin) Stat(ctx context.Context, rawURL string) error {
	b, err := p.blob(rawURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.StorageOperationTimeout)
	defer cancel()

	props, err := b.Properties(ctx)
	if err != nil {
		return fmt.Errorf("stat, %w", err)
	}

	size, lastModified := props.Summary()

	var sb strings.Builder

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%-17s %s\n", name+":", value)
		}
	}

	field("url", rawURL)
	field("size", fmt.Sprintf("%d (%s)", size, humanize.Bytes(size)))
	field("last-modified", lastModified)
	field("content-type", props.ContentType)
	field("content-encoding", props.ContentEncoding)
	field("etag", props.ETag)

	_, err = io.WriteString(p.stdout, sb.String())

	return err
}

// Get downloads the blob into output, or prints it when output is empty or "-".
// With decompress the content is decoded according to its content encoding.
func (p *Plugin) Get(ctx context.Context, rawURL, output string, decompress bool) (err error) {
	b, err := p.blob(rawURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.StorageOperationTimeout)
	defer cancel()

	now := time.Now()

	data, props, err := b.DownloadContent(ctx)
	if err != nil {
		return fmt.Errorf("get, %w", err)
	}

	level.Info(p.logger).Log("msg", "downloaded blob", "blob", b.Address(), "size", humanize.Bytes(uint64(len(data))), "took", time.Since(now))

	if decompress {
		data, err = decode(props.ContentEncoding, data)
		if err != nil {
			return fmt.Errorf("get, decode %s, %w", b.Address(), err)
		}
	}

	if output == "" || output == "-" {
		_, err = p.stdout.Write(data)
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output file, %w", err)
	}

	defer internal.CloseWithErrCapturef(&err, f, "close output file <%s>", output)

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write output file, %w", err)
	}

	return nil
}

func (p *Plugin) blob(rawURL string) (*azure.Blob, error) {
	if rawURL == "" {
		return nil, ErrMissingURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse blob url, %w", err)
	}

	return p.registry.Blob(u)
}

var gzipMagic = []byte{0x1f, 0x8b}

// decode undoes the content encoding of a blob. Identity and empty encodings are returned as is.
func decode(encoding string, data []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return data, nil
	case "gzip", "x-gzip":
		// net/http already inflates gzip bodies it negotiated itself.
		if !bytes.HasPrefix(data, gzipMagic) {
			return data, nil
		}

		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()

		return io.ReadAll(zr)
	case "zstd":
		zr, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer zr.Close()

		return zr.DecodeAll(data, nil)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedEncoding, encoding)
	}
}

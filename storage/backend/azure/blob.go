package azure

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/meltwater/blobresolver/internal"
)

// Blob is a handle on a single blob. It is cheap to create and safe for concurrent use.
type Blob struct {
	logger log.Logger
	addr   Address
	client Client
}

// NewBlob creates a Blob over an existing client.
func NewBlob(l log.Logger, addr Address, c Client) *Blob {
	if l == nil {
		l = log.NewNopLogger()
	}

	return &Blob{logger: l, addr: addr, client: c}
}

// Address returns where the blob lives.
func (b *Blob) Address() Address {
	return b.addr
}

// Exists checks if the blob exists. Only a not found response means it does
// not; every other failure is returned.
func (b *Blob) Exists(ctx context.Context) (bool, error) {
	level.Debug(b.logger).Log("msg", "checking if the blob exists")

	_, err := b.client.GetProperties(ctx, nil)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("check if blob exists, %w", err)
	}

	return true, nil
}

// Properties fetches the blob metadata.
func (b *Blob) Properties(ctx context.Context) (*Properties, error) {
	level.Debug(b.logger).Log("msg", "fetching blob properties")

	resp, err := b.client.GetProperties(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("get blob properties, %w", err)
	}

	return NewProperties(resp), nil
}

// Summary returns the size and the last modified time, rendered in HTTP date
// format, taken from one Properties call.
func (b *Blob) Summary(ctx context.Context) (uint64, string, error) {
	p, err := b.Properties(ctx)
	if err != nil {
		return 0, "", err
	}

	size, lastModified := p.Summary()

	return size, lastModified, nil
}

// Download reads the whole blob into memory.
func (b *Blob) Download(ctx context.Context) ([]byte, error) {
	data, _, err := b.DownloadContent(ctx)
	return data, err
}

// DownloadContent reads the whole blob into memory and returns the properties
// delivered with that same response, such as its content encoding.
func (b *Blob) DownloadContent(ctx context.Context) ([]byte, *Properties, error) {
	type result struct {
		data  []byte
		props *Properties
		err   error
	}

	// Buffered so the goroutine can finish after the caller gave up.
	resCh := make(chan result, 1)

	go func() {
		defer close(resCh)

		resp, err := b.client.DownloadStream(ctx, nil)
		if err != nil {
			resCh <- result{err: fmt.Errorf("get the blob, %w", err)}
			return
		}

		rc := resp.Body
		defer internal.CloseWithErrLogf(b.logger, rc, "response body, close defer")

		var buf bytes.Buffer
		if resp.ContentLength != nil && *resp.ContentLength > 0 {
			buf.Grow(int(*resp.ContentLength))
		}

		if _, err := io.Copy(&buf, rc); err != nil {
			resCh <- result{err: fmt.Errorf("copy the blob, %w", err)}
			return
		}

		level.Debug(b.logger).Log("msg", "downloaded blob", "bytes", buf.Len())

		resCh <- result{data: buf.Bytes(), props: newDownloadProperties(resp)}
	}()

	select {
	case res := <-resCh:
		return res.data, res.props, res.err
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

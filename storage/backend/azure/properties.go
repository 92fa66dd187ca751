package azure

import (
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

// Properties holds a subset of information returned by Blob.GetProperties(..)
type Properties struct {
	ContentLength   uint64
	LastModified    time.Time
	ContentType     string
	ContentEncoding string
	ETag            string
	Metadata        map[string]string
}

// NewProperties creates a new Properties from a blob.GetPropertiesResponse.
func NewProperties(resp blob.GetPropertiesResponse) *Properties {
	return newProperties(resp.ContentLength, resp.LastModified, resp.ContentType, resp.ContentEncoding, resp.ETag, resp.Metadata)
}

// newDownloadProperties reads the blob properties sent along with its content.
func newDownloadProperties(resp blob.DownloadStreamResponse) *Properties {
	return newProperties(resp.ContentLength, resp.LastModified, resp.ContentType, resp.ContentEncoding, resp.ETag, resp.Metadata)
}

func newProperties(
	length *int64,
	modified *time.Time,
	contentType, contentEncoding *string,
	etag *azcore.ETag,
	metadata map[string]*string,
) *Properties {
	p := &Properties{}

	if length != nil && *length > 0 {
		p.ContentLength = uint64(*length)
	}

	if modified != nil {
		p.LastModified = *modified
	}

	if contentType != nil {
		p.ContentType = *contentType
	}

	if contentEncoding != nil {
		p.ContentEncoding = *contentEncoding
	}

	if etag != nil {
		p.ETag = string(*etag)
	}

	if len(metadata) > 0 {
		p.Metadata = make(map[string]string, len(metadata))

		for k, v := range metadata {
			if v != nil {
				p.Metadata[k] = *v
			}
		}
	}

	return p
}

// Summary returns the content length and the last modified time in HTTP date
// format, or an empty string when the time is unknown.
func (p *Properties) Summary() (uint64, string) {
	if p.LastModified.IsZero() {
		return p.ContentLength, ""
	}

	return p.ContentLength, p.LastModified.UTC().Format(http.TimeFormat)
}

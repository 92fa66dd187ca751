package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

// Client contains the blob operations a Blob needs. *blob.Client implements it; the interface is
// here so we can write mocks over the actual functionality.
type Client interface {
	GetProperties(ctx context.Context, o *blob.GetPropertiesOptions) (blob.GetPropertiesResponse, error)
	DownloadStream(ctx context.Context, o *blob.DownloadStreamOptions) (blob.DownloadStreamResponse, error)
}

var _ Client = (*blob.Client)(nil)

// ClientFactory builds a Client for the blob at blobURL authenticated with cred.
type ClientFactory func(blobURL string, cred azcore.TokenCredential, o *blob.ClientOptions) (Client, error)

// DefaultClientFactory builds a *blob.Client.
func DefaultClientFactory(blobURL string, cred azcore.TokenCredential, o *blob.ClientOptions) (Client, error) {
	c, err := blob.NewClient(blobURL, cred, o)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// failedClient defers a client construction error to the first operation.
type failedClient struct {
	err error
}

func (c failedClient) GetProperties(context.Context, *blob.GetPropertiesOptions) (blob.GetPropertiesResponse, error) {
	return blob.GetPropertiesResponse{}, c.err
}

func (c failedClient) DownloadStream(context.Context, *blob.DownloadStreamOptions) (blob.DownloadStreamResponse, error) {
	return blob.DownloadStreamResponse{}, c.err
}

package azure

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
)

const (
	// DefaultBlobMaxRetryRequests Default value for Azure Blob Storage Max Retry Requests.
	DefaultBlobMaxRetryRequests = 4

	// DefaultBlobStorageURL is the blob endpoint domain suffix of the public cloud.
	DefaultBlobStorageURL = "blob.core.windows.net"

	// DefaultAzuriteURL is where the Azurite emulator listens by default.
	DefaultAzuriteURL = "127.0.0.1:10000"
)

// Config is a structure to store Azure backend configuration.
type Config struct {
	// Cloud names the Azure cloud: AzurePublicCloud (default), AzureChinaCloud or AzureUSGovernmentCloud.
	Cloud string

	// BlobStorageURL is the domain suffix stripped from URL hosts to find the
	// account name. Defaults to the suffix of Cloud.
	BlobStorageURL string

	// Azurite sends requests path-style to AzuriteURL over plain HTTP.
	Azurite    bool
	AzuriteURL string

	MaxRetryRequests int
}

type cloudEnv struct {
	cfg            cloud.Configuration
	blobStorageURL string
}

var clouds = map[string]cloudEnv{
	"azurepubliccloud":       {cfg: cloud.AzurePublic, blobStorageURL: DefaultBlobStorageURL},
	"azurechinacloud":        {cfg: cloud.AzureChina, blobStorageURL: "blob.core.chinacloudapi.cn"},
	"azureusgovernmentcloud": {cfg: cloud.AzureGovernment, blobStorageURL: "blob.core.usgovcloudapi.net"},
}

// withDefaults fills the zero values of c and returns the cloud configuration it names.
func (c Config) withDefaults() (Config, cloud.Configuration, error) {
	name := strings.ToLower(c.Cloud)
	if name == "" {
		name = "azurepubliccloud"
	}

	env, ok := clouds[name]
	if !ok {
		return c, cloud.Configuration{}, fmt.Errorf("azure, unknown cloud %q", c.Cloud)
	}

	if c.BlobStorageURL == "" {
		c.BlobStorageURL = env.blobStorageURL
	}

	if c.AzuriteURL == "" {
		c.AzuriteURL = DefaultAzuriteURL
	}

	if c.MaxRetryRequests == 0 {
		c.MaxRetryRequests = DefaultBlobMaxRetryRequests
	}

	return c, env.cfg, nil
}

// serviceURL returns the blob service endpoint of account.
func (c Config) serviceURL(account string) string {
	if c.Azurite {
		return fmt.Sprintf("http://%s/%s", c.AzuriteURL, account)
	}

	return fmt.Sprintf("https://%s.%s", account, c.BlobStorageURL)
}

package credential

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// Factory constructs the candidate credentials tried by a Resolver. It exists
// so tests can replace the identity providers.
type Factory interface {
	// WorkloadIdentity builds a federated workload identity credential from the
	// ambient environment.
	WorkloadIdentity() (azcore.TokenCredential, error)

	// ClientSecret builds a service principal credential.
	ClientSecret(tenantID, clientID, clientSecret string) (azcore.TokenCredential, error)

	// DeveloperTool builds a credential backed by a local developer CLI session.
	DeveloperTool() (azcore.TokenCredential, error)

	// ManagedIdentity builds a credential backed by the instance metadata service.
	ManagedIdentity() (azcore.TokenCredential, error)
}

var _ Factory = DefaultFactory{}

// DefaultFactory knows how to make azidentity credentials.
type DefaultFactory struct {
	ClientOptions azcore.ClientOptions
}

// WorkloadIdentity implements Factory.
func (f DefaultFactory) WorkloadIdentity() (azcore.TokenCredential, error) {
	return azidentity.NewWorkloadIdentityCredential(&azidentity.WorkloadIdentityCredentialOptions{
		ClientOptions: f.ClientOptions,
	})
}

// ClientSecret implements Factory.
func (f DefaultFactory) ClientSecret(tenantID, clientID, clientSecret string) (azcore.TokenCredential, error) {
	return azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, &azidentity.ClientSecretCredentialOptions{
		ClientOptions: f.ClientOptions,
	})
}

// DeveloperTool implements Factory. The Azure CLI session is preferred over the
// Azure Developer CLI one.
func (f DefaultFactory) DeveloperTool() (azcore.TokenCredential, error) {
	cli, err := azidentity.NewAzureCLICredential(nil)
	if err != nil {
		return nil, err
	}

	azd, err := azidentity.NewAzureDeveloperCLICredential(nil)
	if err != nil {
		return nil, err
	}

	return azidentity.NewChainedTokenCredential([]azcore.TokenCredential{cli, azd}, nil)
}

// ManagedIdentity implements Factory.
func (f DefaultFactory) ManagedIdentity() (azcore.TokenCredential, error) {
	return azidentity.NewManagedIdentityCredential(&azidentity.ManagedIdentityCredentialOptions{
		ClientOptions: f.ClientOptions,
	})
}

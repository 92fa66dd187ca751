package credential

import "github.com/Azure/azure-sdk-for-go/sdk/azcore"

// StorageScope is the token scope for Azure Storage data plane requests.
const StorageScope = "https://storage.azure.com/.default"

// Kind names the mechanism a Credential was obtained from.
type Kind string

// Credential kinds, in the order the Resolver tries them. StaticBearer is never
// produced by the Resolver.
const (
	KindWorkloadIdentity Kind = "WorkloadIdentityCredential"
	KindClientSecret     Kind = "ClientSecretCredential"
	KindDeveloperTool    Kind = "DeveloperToolCredential"
	KindManagedIdentity  Kind = "ManagedIdentityCredential"
	KindStaticBearer     Kind = "StaticBearerCredential"
)

// Credential is a token credential tagged with its kind. It is read-only after
// construction and may be shared by any number of clients.
type Credential struct {
	azcore.TokenCredential

	Kind Kind
}

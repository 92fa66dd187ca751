// Package azure resolves blob URLs into Azure Blob Storage clients.
//
// A Registry owns one credential picked by a credential.Resolver and hands out
// Blob handles for URLs of the form
//
//	https://<account>.blob.core.windows.net/<container>/<blob path>
//
// When AZURE_STORAGE_BEARER_TOKEN is set it is used for every client built
// while it stays set, and the resolved credential is left untouched.
package azure

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/meltwater/blobresolver/credential"
)

// Resolver obtains the credential shared by a Registry.
type Resolver interface {
	Resolve(ctx context.Context) (*credential.Credential, error)
}

// Registry builds blob clients from URLs.
type Registry struct {
	logger log.Logger
	cfg    Config

	credential    azcore.TokenCredential
	clientOptions *blob.ClientOptions
	newClient     ClientFactory
	lookupEnv     credential.LookupEnvFunc
}

// New creates a Registry. Unless WithCredential or WithLazyCredential is given
// the credential chain is resolved here, and a chain without any usable
// credential fails construction.
func New(l log.Logger, c Config, opts ...Option) (*Registry, error) {
	if l == nil {
		l = log.NewNopLogger()
	}

	c, cloudCfg, err := c.withDefaults()
	if err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt.apply(&o)
	}

	if o.clientFactory == nil {
		o.clientFactory = DefaultClientFactory
	}

	if o.resolver == nil {
		copts := append([]credential.Option{
			credential.WithCloud(cloudCfg),
			credential.WithLookupEnv(o.lookupEnv),
		}, o.credentialOptions...)

		o.resolver = credential.NewResolver(l, copts...)
	}

	var cred azcore.TokenCredential

	switch {
	case o.credential != nil:
		level.Debug(l).Log("msg", "using provided credential")

		cred = o.credential
	case o.lazy:
		level.Debug(l).Log("msg", "deferring credential resolution")

		cred = &lazyCredential{resolver: o.resolver}
	default:
		resolved, err := o.resolver.Resolve(context.Background())
		if err != nil {
			return nil, fmt.Errorf("azure, failed to obtain a credential, %w", err)
		}

		level.Info(l).Log("msg", "resolved azure credential", "kind", resolved.Kind)

		cred = resolved
	}

	level.Info(l).Log("msg", "constructed blob registry", "cloud", c.Cloud, "blobStorageURL", c.BlobStorageURL, "azurite", c.Azurite)

	return &Registry{
		logger:     l,
		cfg:        c,
		credential: cred,
		clientOptions: &blob.ClientOptions{
			ClientOptions: azcore.ClientOptions{
				Cloud:                           cloudCfg,
				Retry:                           policy.RetryOptions{MaxRetries: int32(c.MaxRetryRequests)},
				Transport:                       o.transport,
				InsecureAllowCredentialWithHTTP: c.Azurite,
			},
		},
		newClient: o.clientFactory,
		lookupEnv: o.lookupEnv,
	}, nil
}

// Credential returns the credential shared by every client not using the bearer token override.
func (r *Registry) Credential() azcore.TokenCredential {
	return r.credential
}

// Address parses u with the registry's blob storage domain suffix.
func (r *Registry) Address(u *url.URL) (Address, error) {
	return ParseAddress(u, r.cfg.BlobStorageURL)
}

// Blob returns a handle on the blob u points at.
func (r *Registry) Blob(u *url.URL) (*Blob, error) {
	addr, err := r.Address(u)
	if err != nil {
		return nil, err
	}

	return &Blob{
		logger: log.With(r.logger, "blob", addr),
		addr:   addr,
		client: r.ClientFor(addr.Account, addr.Container, addr.BlobName),
	}, nil
}

// ClientFor builds a client for one blob. AZURE_STORAGE_BEARER_TOKEN is read on
// every call and, when set, takes precedence over the shared credential.
// Construction errors are returned by the first operation on the client.
func (r *Registry) ClientFor(account, container, blobName string) Client {
	var cred azcore.TokenCredential

	if token, ok := credential.BearerToken(r.lookupEnv); ok {
		level.Debug(r.logger).Log("msg", "using storage bearer token", "account", account)

		cred = credential.NewStaticBearer(token)
	} else {
		level.Debug(r.logger).Log("msg", "using token credential", "account", account)

		cred = r.credential
	}

	blobURL := r.blobURL(account, container, blobName)

	client, err := r.newClient(blobURL, cred, r.clientOptions)
	if err != nil {
		level.Error(r.logger).Log("msg", "failed to create blob client", "url", blobURL, "err", err)

		return failedClient{err: fmt.Errorf("azure, failed to create blob client, %w", err)}
	}

	return client
}

// blobURL escapes each segment of blobName and keeps its separators.
func (r *Registry) blobURL(account, container, blobName string) string {
	segments := strings.Split(blobName, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return fmt.Sprintf("%s/%s/%s", r.cfg.serviceURL(account), url.PathEscape(container), strings.Join(segments, "/"))
}

// lazyCredential resolves the chain on the first token request. The outcome,
// including ErrNoSuitableCredential, is kept for the lifetime of the registry.
type lazyCredential struct {
	resolver Resolver

	once sync.Once
	cred *credential.Credential
	err  error
}

func (c *lazyCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	cred, err := c.resolve(ctx)
	if err != nil {
		return azcore.AccessToken{}, err
	}

	return cred.GetToken(ctx, opts)
}

// resolve detaches from the caller's cancellation so a canceled first request
// cannot be kept as the registry's outcome.
func (c *lazyCredential) resolve(ctx context.Context) (*credential.Credential, error) {
	c.once.Do(func() {
		c.cred, c.err = c.resolver.Resolve(context.WithoutCancel(ctx))
	})

	return c.cred, c.err
}

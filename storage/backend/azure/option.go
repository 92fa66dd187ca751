package azure

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/meltwater/blobresolver/credential"
)

type options struct {
	resolver      Resolver
	credential    azcore.TokenCredential
	lazy          bool
	clientFactory ClientFactory
	lookupEnv     credential.LookupEnvFunc
	transport     policy.Transporter

	credentialOptions []credential.Option
}

// Option overrides behavior of Registry.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithResolver sets the credential resolver, a credential.Resolver for the configured cloud by default.
func WithResolver(r Resolver) Option {
	return optionFunc(func(o *options) {
		o.resolver = r
	})
}

// WithCredential uses cred for every client and never resolves one.
func WithCredential(cred azcore.TokenCredential) Option {
	return optionFunc(func(o *options) {
		o.credential = cred
	})
}

// WithLazyCredential defers credential resolution until a client first needs a token.
func WithLazyCredential(lazy bool) Option {
	return optionFunc(func(o *options) {
		o.lazy = lazy
	})
}

// WithClientFactory sets how blob clients are built.
func WithClientFactory(f ClientFactory) Option {
	return optionFunc(func(o *options) {
		o.clientFactory = f
	})
}

// WithLookupEnv sets the environment lookup used for the bearer token override and
// by the default resolver.
func WithLookupEnv(f credential.LookupEnvFunc) Option {
	return optionFunc(func(o *options) {
		o.lookupEnv = f
	})
}

// WithTransport sets the HTTP transport of blob clients.
func WithTransport(t policy.Transporter) Option {
	return optionFunc(func(o *options) {
		o.transport = t
	})
}

// WithCredentialOptions passes opts to the default resolver. Ignored when WithResolver is given.
func WithCredentialOptions(opts ...credential.Option) Option {
	return optionFunc(func(o *options) {
		o.credentialOptions = append(o.credentialOptions, opts...)
	})
}

package credential

import (
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
)

type options struct {
	factory         Factory
	lookupEnv       LookupEnvFunc
	cloud           cloud.Configuration
	validate        bool
	validateTimeout time.Duration
}

// Option overrides behavior of Resolver.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithFactory sets the factory used to construct candidate credentials.
func WithFactory(f Factory) Option {
	return optionFunc(func(o *options) {
		o.factory = f
	})
}

// WithLookupEnv sets the environment lookup, os.LookupEnv by default.
func WithLookupEnv(f LookupEnvFunc) Option {
	return optionFunc(func(o *options) {
		o.lookupEnv = f
	})
}

// WithCloud sets the cloud the default factory authenticates against.
// Ignored when WithFactory is given.
func WithCloud(c cloud.Configuration) Option {
	return optionFunc(func(o *options) {
		o.cloud = c
	})
}

// WithTokenValidation requires every constructed credential to acquire a storage
// token within timeout before it is selected.
func WithTokenValidation(timeout time.Duration) Option {
	return optionFunc(func(o *options) {
		o.validate = true
		o.validateTimeout = timeout
	})
}

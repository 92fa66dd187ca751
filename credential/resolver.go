package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/hashicorp/go-multierror"
)

// DefaultValidateTimeout bounds a token acquisition when WithTokenValidation is given a zero timeout.
const DefaultValidateTimeout = 10 * time.Second

// Resolver picks a credential out of an ordered chain of identity mechanisms:
//
//  1. workload identity (federated token from the environment)
//  2. client secret, only when AZURE_TENANT_ID, AZURE_CLIENT_ID and AZURE_CLIENT_SECRET are all set
//  3. developer tool session (Azure CLI, then Azure Developer CLI)
//  4. managed identity
//
// The first mechanism that succeeds wins. Failures are logged at debug level
// and never surfaced on their own.
type Resolver struct {
	logger log.Logger

	factory         Factory
	lookupEnv       LookupEnvFunc
	validate        bool
	validateTimeout time.Duration
}

// NewResolver creates a Resolver.
func NewResolver(l log.Logger, opts ...Option) *Resolver {
	o := options{}
	for _, opt := range opts {
		opt.apply(&o)
	}

	if l == nil {
		l = log.NewNopLogger()
	}

	if o.factory == nil {
		o.factory = DefaultFactory{ClientOptions: policy.ClientOptions{Cloud: o.cloud}}
	}

	if o.validate && o.validateTimeout <= 0 {
		o.validateTimeout = DefaultValidateTimeout
	}

	return &Resolver{
		logger:          l,
		factory:         o.factory,
		lookupEnv:       o.lookupEnv,
		validate:        o.validate,
		validateTimeout: o.validateTimeout,
	}
}

type step struct {
	kind  Kind
	build func() (azcore.TokenCredential, error)
}

// steps returns the chain in precedence order.
func (r *Resolver) steps() []step {
	return []step{
		{kind: KindWorkloadIdentity, build: r.factory.WorkloadIdentity},
		{kind: KindClientSecret, build: r.clientSecret},
		{kind: KindDeveloperTool, build: r.factory.DeveloperTool},
		{kind: KindManagedIdentity, build: r.factory.ManagedIdentity},
	}
}

// Resolve walks the chain and returns the first credential available.
// ErrNoSuitableCredential is returned when every step failed.
func (r *Resolver) Resolve(ctx context.Context) (*Credential, error) {
	var errs *multierror.Error

	for _, p := range r.steps() {
		cred, err := r.try(ctx, p)
		if errors.Is(err, errSkipped) {
			level.Debug(r.logger).Log("msg", "skipping credential", "kind", p.kind, "reason", err)
			continue
		}

		if err != nil {
			level.Debug(r.logger).Log("msg", "credential unavailable", "kind", p.kind, "err", err)
			errs = multierror.Append(errs, fmt.Errorf("%s, %w", p.kind, err))

			continue
		}

		level.Debug(r.logger).Log("msg", "using credential for authentication", "kind", p.kind)

		return &Credential{TokenCredential: cred, Kind: p.kind}, nil
	}

	if errs == nil {
		return nil, ErrNoSuitableCredential
	}

	errs.ErrorFormat = inlineFormat

	return nil, fmt.Errorf("%w, %w", ErrNoSuitableCredential, errs)
}

// try runs a single step. A panicking provider counts as a failed step.
func (r *Resolver) try(ctx context.Context, p step) (cred azcore.TokenCredential, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			cred, err = nil, fmt.Errorf("panic, %v", rec)
		}
	}()

	cred, err = p.build()
	if err != nil {
		return nil, err
	}

	if cred == nil {
		return nil, errors.New("provider returned no credential")
	}

	if r.validate {
		if err := r.validateToken(ctx, cred); err != nil {
			return nil, err
		}
	}

	return cred, nil
}

func (r *Resolver) clientSecret() (azcore.TokenCredential, error) {
	tenantID, tok := lookup(r.lookupEnv, EnvTenantID)
	clientID, cok := lookup(r.lookupEnv, EnvClientID)
	secret, sok := lookup(r.lookupEnv, EnvClientSecret)

	if !tok || !cok || !sok {
		return nil, fmt.Errorf("%w, %s, %s and %s must all be set", errSkipped, EnvTenantID, EnvClientID, EnvClientSecret)
	}

	return r.factory.ClientSecret(tenantID, clientID, secret)
}

func (r *Resolver) validateToken(ctx context.Context, cred azcore.TokenCredential) error {
	ctx, cancel := context.WithTimeout(ctx, r.validateTimeout)
	defer cancel()

	if _, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{StorageScope}}); err != nil {
		return fmt.Errorf("acquire token, %w", err)
	}

	return nil
}

func inlineFormat(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return strings.Join(msgs, "; ")
}

package credential

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"golang.org/x/oauth2"

	"github.com/meltwater/blobresolver/test"
)

type errTokenSource struct{ err error }

func (s errTokenSource) Token() (*oauth2.Token, error) { return nil, s.err }

func TestNewStaticBearer(t *testing.T) {
	cred := NewStaticBearer("s3cr3t")
	test.Equals(t, KindStaticBearer, cred.Kind)

	tok, err := cred.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{StorageScope}})
	test.Ok(t, err)
	test.Equals(t, "s3cr3t", tok.Token)
	test.Assert(t, tok.ExpiresOn.After(time.Now()), "static token must not be reported as expired: %v", tok.ExpiresOn)
}

func TestFromTokenSource(t *testing.T) {
	expiry := time.Now().Add(5 * time.Minute).Round(0)

	tok, err := FromTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "abc", Expiry: expiry})).
		GetToken(context.Background(), policy.TokenRequestOptions{})
	test.Ok(t, err)
	test.Equals(t, "abc", tok.Token)
	test.Assert(t, tok.ExpiresOn.Equal(expiry), "expected expiry %v, got %v", expiry, tok.ExpiresOn)

	errSource := errors.New("refresh failed")
	_, err = FromTokenSource(errTokenSource{err: errSource}).GetToken(context.Background(), policy.TokenRequestOptions{})
	test.ErrorIs(t, err, errSource)
}

func TestBearerToken(t *testing.T) {
	for _, tc := range []struct {
		name string
		env  env
		want string
		ok   bool
	}{
		{name: "unset", env: env{}},
		{name: "empty", env: env{EnvStorageBearerToken: ""}},
		{name: "set", env: env{EnvStorageBearerToken: "tok"}, want: "tok", ok: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := BearerToken(tc.env.lookup)
			test.Equals(t, tc.ok, ok)
			test.Equals(t, tc.want, got)
		})
	}
}

func TestBearerTokenReadsProcessEnvironment(t *testing.T) {
	t.Setenv(EnvStorageBearerToken, "from-env")

	got, ok := BearerToken(nil)
	test.Assert(t, ok, "expected token to be present")
	test.Equals(t, "from-env", got)
}

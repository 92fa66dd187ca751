package credential

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"golang.org/x/oauth2"
)

// staticTokenLifetime is reported for tokens that carry no expiry of their own.
const staticTokenLifetime = time.Hour

// NewStaticBearer returns a Credential that always presents token.
func NewStaticBearer(token string) *Credential {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})

	return &Credential{
		TokenCredential: FromTokenSource(src),
		Kind:            KindStaticBearer,
	}
}

// FromTokenSource adapts an oauth2.TokenSource to azcore.TokenCredential.
// Requested scopes are ignored, the source decides which token is returned.
func FromTokenSource(src oauth2.TokenSource) azcore.TokenCredential {
	return tokenSourceCredential{src: src}
}

type tokenSourceCredential struct {
	src oauth2.TokenSource
}

func (c tokenSourceCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	tok, err := c.src.Token()
	if err != nil {
		return azcore.AccessToken{}, fmt.Errorf("token source, %w", err)
	}

	expires := tok.Expiry
	if expires.IsZero() {
		expires = time.Now().Add(staticTokenLifetime)
	}

	return azcore.AccessToken{Token: tok.AccessToken, ExpiresOn: expires}, nil
}

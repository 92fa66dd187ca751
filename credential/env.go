package credential

import "os"

// Environment variables consulted at the point of use. Nothing is cached.
const (
	EnvTenantID           = "AZURE_TENANT_ID"
	EnvClientID           = "AZURE_CLIENT_ID"
	EnvClientSecret       = "AZURE_CLIENT_SECRET"
	EnvStorageBearerToken = "AZURE_STORAGE_BEARER_TOKEN"
)

// LookupEnvFunc has the signature of os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// lookup reports a variable as present only when it is set and non-empty.
func lookup(lookupEnv LookupEnvFunc, key string) (string, bool) {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	v, ok := lookupEnv(key)

	return v, ok && v != ""
}

// BearerToken returns the storage bearer token override, if any.
func BearerToken(lookupEnv LookupEnvFunc) (string, bool) {
	return lookup(lookupEnv, EnvStorageBearerToken)
}

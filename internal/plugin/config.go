package plugin

import (
	"time"

	"github.com/meltwater/blobresolver/credential"
	"github.com/meltwater/blobresolver/storage/backend/azure"
)

// Config plugin-specific parameters.
type Config struct {
	// Modes
	LazyCredential     bool
	ValidateCredential bool

	// Optional
	StorageOperationTimeout time.Duration
	ValidateTimeout         time.Duration

	// LookupEnv reads AZURE_* variables, os.LookupEnv when nil.
	LookupEnv credential.LookupEnvFunc

	// Backend
	Azure azure.Config
}

package intent

import (
	"os"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "harvest-cli"
	keyringUser    = "openai-api-key"
)

// APIKey resolves the intent model credential: environment variables first
// (HARVEST_OPENAI_API_KEY, then OPENAI_API_KEY), then the system keyring.
// Returns "" when no credential is configured.
func APIKey() string {
	if v := os.Getenv("HARVEST_OPENAI_API_KEY"); v != "" {
		return v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		return v
	}
	key, err := keyring.Get(KeyringService, keyringUser)
	if err != nil {
		return ""
	}
	return key
}

// StoreAPIKey saves the credential in the system keyring
func StoreAPIKey(key string) error {
	return keyring.Set(KeyringService, keyringUser, key)
}

// ClearAPIKey removes the credential from the system keyring
func ClearAPIKey() error {
	err := keyring.Delete(KeyringService, keyringUser)
	if err == keyring.ErrNotFound {
		return nil
	}
	return err
}

package security

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"bechdelcli/internal/config"
)

// serviceAccountKey is the subset of a Google service-account JSON key
// checked before the credentials are handed to the sheets client
type serviceAccountKey struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
}

// LoadCredentials loads the Google Sheets service-account credentials
// for publishing. The encrypted file takes precedence over the
// plaintext one; the passphrase is only required for the encrypted
// form. A missing credentials file is an error the caller downgrades
// to a skipped publish.
func LoadCredentials(paths *config.Paths, passphrase string) (*SecureCredentials, error) {
	if config.FileExists(paths.EncryptedCredentialsFile) {
		return loadEncryptedCredentials(paths.EncryptedCredentialsFile, passphrase)
	}

	if config.FileExists(paths.CredentialsFile) {
		return loadPlaintextCredentials(paths.CredentialsFile)
	}

	return nil, fmt.Errorf("no credentials found at %s or %s",
		paths.EncryptedCredentialsFile, paths.CredentialsFile)
}

func loadEncryptedCredentials(path, passphrase string) (*SecureCredentials, error) {
	if passphrase == "" {
		return nil, errors.New("encrypted credentials require a passphrase")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read encrypted credentials: %w", err)
	}

	var payload EncryptedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse encrypted credentials: %w", err)
	}

	credentials, err := DecryptCredentials(&payload, passphrase, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	if err := ValidateServiceAccountJSON(credentials.Data()); err != nil {
		credentials.Clear()
		return nil, err
	}

	slog.Info("Loaded encrypted sheets credentials", slog.String("path", path))
	return credentials, nil
}

func loadPlaintextCredentials(path string) (*SecureCredentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	if err := ValidateServiceAccountJSON(data); err != nil {
		return nil, err
	}

	slog.Info("Loaded plaintext sheets credentials", slog.String("path", path))
	return NewSecureCredentials(data), nil
}

// EncryptCredentialsFile encrypts a plaintext service-account key file
// so the plaintext copy can be removed. The payload is written as JSON
// readable only by the owner.
func EncryptCredentialsFile(plainPath, encryptedPath, passphrase string) error {
	data, err := os.ReadFile(plainPath)
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	if err := ValidateServiceAccountJSON(data); err != nil {
		return err
	}

	payload, err := EncryptCredentials(data, passphrase, nil)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	if err := os.WriteFile(encryptedPath, encoded, 0600); err != nil {
		return fmt.Errorf("failed to write encrypted credentials: %w", err)
	}

	slog.Info("Credentials encrypted",
		slog.String("source", plainPath),
		slog.String("target", encryptedPath))
	return nil
}

// ValidateServiceAccountJSON checks that credential data looks like a
// Google service-account key before it reaches the sheets client
func ValidateServiceAccountJSON(data []byte) error {
	var key serviceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return fmt.Errorf("credentials are not valid JSON: %w", err)
	}

	if key.Type != "service_account" {
		return fmt.Errorf("credentials type must be service_account, got %q", key.Type)
	}
	if key.ProjectID == "" {
		return errors.New("credentials are missing project_id")
	}
	if key.PrivateKey == "" {
		return errors.New("credentials are missing private_key")
	}
	if key.ClientEmail == "" {
		return errors.New("credentials are missing client_email")
	}
	return nil
}

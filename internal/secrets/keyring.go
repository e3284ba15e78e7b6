// Package secrets stores the Gemini API key in the OS keychain, with a
// private file fallback for machines without a keyring service.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

// ServiceName is the keychain service the key is stored under.
const ServiceName = "stubro"

const keyGeminiAPIKey = "gemini-api-key"

// ErrNoAPIKey is returned when no key is stored.
var ErrNoAPIKey = errors.New("secrets: no API key stored")

// KeyringStore wraps the OS keychain with an optional file fallback.
type KeyringStore struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// NewKeyringStore creates a keyring wrapper. An empty fallbackPath disables
// the file fallback.
func NewKeyringStore(serviceName, fallbackPath string) *KeyringStore {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = ServiceName
	}
	return &KeyringStore{
		service:      serviceName,
		fallbackPath: fallbackPath,
	}
}

// SetAPIKey stores the Gemini API key.
func (k *KeyringStore) SetAPIKey(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("secrets: API key is empty")
	}

	if err := keyring.Set(k.service, keyGeminiAPIKey, value); err == nil {
		return nil
	} else if !isKeyringUnavailable(err) {
		return fmt.Errorf("secrets: keyring set: %w", err)
	}

	return k.setFallback(keyGeminiAPIKey, value)
}

// APIKey returns the stored Gemini API key or ErrNoAPIKey.
func (k *KeyringStore) APIKey() (string, error) {
	val, err := keyring.Get(k.service, keyGeminiAPIKey)
	if err == nil {
		return val, nil
	}
	if !isKeyringUnavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("secrets: keyring get: %w", err)
	}

	val, ferr := k.getFallback(keyGeminiAPIKey)
	if ferr == nil {
		return val, nil
	}
	if errors.Is(ferr, ErrNoAPIKey) {
		return "", ErrNoAPIKey
	}
	return "", ferr
}

// DeleteAPIKey removes the key from the keychain and the fallback file.
func (k *KeyringStore) DeleteAPIKey() error {
	err := keyring.Delete(k.service, keyGeminiAPIKey)
	ferr := k.deleteFallback(keyGeminiAPIKey)

	if err != nil && !errors.Is(err, keyring.ErrNotFound) && !isKeyringUnavailable(err) {
		return fmt.Errorf("secrets: keyring delete: %w", err)
	}
	return ferr
}

// ResolveAPIKey picks the first non-empty key from the flag value, the
// environment variable and the store.
func ResolveAPIKey(flagValue, envName string, store *KeyringStore) (key, source string) {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v, "flag"
	}
	if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
		return v, "env"
	}
	if store != nil {
		if v, err := store.APIKey(); err == nil && v != "" {
			return v, "keyring"
		}
	}
	return "", ""
}

func isKeyringUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "secret service") ||
		strings.Contains(msg, "dbus") ||
		strings.Contains(msg, "no keychain") ||
		strings.Contains(msg, "keyring backend not available") ||
		strings.Contains(msg, "executable file not found")
}

type fallbackSecrets map[string]string

func (k *KeyringStore) setFallback(name, value string) error {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return fmt.Errorf("secrets: keyring unavailable and no fallback path configured")
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.readFallbackUnlocked()
	if err != nil {
		return err
	}
	data[name] = value
	return k.writeFallbackUnlocked(data)
}

func (k *KeyringStore) getFallback(name string) (string, error) {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return "", ErrNoAPIKey
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.readFallbackUnlocked()
	if err != nil {
		return "", err
	}
	val, ok := data[name]
	if !ok || val == "" {
		return "", ErrNoAPIKey
	}
	return val, nil
}

func (k *KeyringStore) deleteFallback(name string) error {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.readFallbackUnlocked()
	if err != nil {
		return err
	}
	if _, ok := data[name]; !ok {
		return nil
	}
	delete(data, name)
	return k.writeFallbackUnlocked(data)
}

func (k *KeyringStore) readFallbackUnlocked() (fallbackSecrets, error) {
	out := fallbackSecrets{}
	raw, err := os.ReadFile(k.fallbackPath)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("secrets: read fallback secrets: %w", err)
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("secrets: decode fallback secrets: %w", err)
	}
	return out, nil
}

func (k *KeyringStore) writeFallbackUnlocked(data fallbackSecrets) error {
	dir := filepath.Dir(k.fallbackPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("secrets: mkdir fallback dir: %w", err)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("secrets: encode fallback secrets: %w", err)
	}
	if err := os.WriteFile(k.fallbackPath, raw, 0o600); err != nil {
		return fmt.Errorf("secrets: write fallback secrets: %w", err)
	}
	return nil
}

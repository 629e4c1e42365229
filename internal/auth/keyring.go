// Package auth stores the Galaxy admin password in the OS keyring so it does
// not have to live in the environment or the config file.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dl-alexandre/gxlib/internal/utils"
	"github.com/zalando/go-keyring"
)

// ErrNotFound means no password is stored for the account
var ErrNotFound = errors.New("no stored password")

// PasswordStore persists one secret per account
type PasswordStore interface {
	Get(account string) (string, error)
	Set(account, password string) error
	Delete(account string) error
	Name() string
}

// KeyringStore uses the system keyring for password storage
type KeyringStore struct {
	serviceName string
}

// NewKeyringStore creates a keyring store. An empty serviceName uses the
// default gxlib service.
func NewKeyringStore(serviceName string) *KeyringStore {
	if serviceName == "" {
		serviceName = utils.KeyringServiceName
	}
	return &KeyringStore{serviceName: serviceName}
}

func (s *KeyringStore) Get(account string) (string, error) {
	secret, err := keyring.Get(s.serviceName, normalizeAccount(account))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read keyring: %w", err)
	}
	return secret, nil
}

func (s *KeyringStore) Set(account, password string) error {
	if password == "" {
		return errors.New("refusing to store an empty password")
	}
	if err := keyring.Set(s.serviceName, normalizeAccount(account), password); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

func (s *KeyringStore) Delete(account string) error {
	err := keyring.Delete(s.serviceName, normalizeAccount(account))
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete from keyring: %w", err)
	}
	return nil
}

func (s *KeyringStore) Name() string {
	return "system-keyring"
}

// LookupPassword returns the stored password for account, or "" when the
// store is unavailable or holds nothing. Headless hosts usually have no
// keyring daemon, so every failure counts as absent.
func LookupPassword(store PasswordStore, account string) string {
	if store == nil {
		return ""
	}
	secret, err := store.Get(account)
	if err != nil {
		return ""
	}
	return secret
}

func normalizeAccount(account string) string {
	return strings.ToLower(strings.TrimSpace(account))
}

package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name passwords are stored under in the OS
// keyring.
const KeyringService = "sqltab"

// ResolvePassword fills in the password for sql auth from the OS keyring
// when none was configured. Other auth modes and raw DSNs are left alone.
func (c *Connection) ResolvePassword() error {
	if c.Auth != AuthSQL || c.Password != "" || c.DSN != "" {
		return nil
	}

	secret, err := keyring.Get(KeyringService, c.KeyringAccount())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return &Error{Field: "password", Cause: fmt.Errorf("no password configured and none stored in keyring for %s", c.KeyringAccount())}
		}
		return &Error{Field: "password", Cause: fmt.Errorf("keyring: %w", err)}
	}
	c.Password = secret
	return nil
}

// StorePassword saves the password for the connection's account in the OS
// keyring.
func (c Connection) StorePassword(password string) error {
	if c.User == "" {
		return &Error{Field: "user", Cause: fmt.Errorf("cannot store a password without a user")}
	}
	if err := keyring.Set(KeyringService, c.KeyringAccount(), password); err != nil {
		return &Error{Field: "password", Cause: fmt.Errorf("keyring: %w", err)}
	}
	return nil
}

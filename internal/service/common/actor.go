//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"os/user"

	domain "github.com/oshokin/smart-alarm/internal/domain/alarm"
)

// usernameEnv lists variables consulted when the user database is unavailable.
var usernameEnv = []string{"USER", "USERNAME", "LOGNAME"} //nolint:gochecknoglobals // Read-only lookup order.

// errNoUsername means neither the user database nor the environment named the user.
var errNoUsername = errors.New("unable to determine current user")

// DetectActor gathers host and user information for the server logs.
func DetectActor() (*domain.Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	username, err := currentUsername(user.Current, os.Getenv)
	if err != nil {
		return nil, err
	}

	return &domain.Actor{
		Hostname: hostname,
		Username: username,
	}, nil
}

// currentUsername asks the user database first and falls back to the
// environment, which is all minimal containers provide.
func currentUsername(lookup func() (*user.User, error), getenv func(string) string) (string, error) {
	u, lookupErr := lookup()
	if lookupErr == nil && u.Username != "" {
		return u.Username, nil
	}

	for _, key := range usernameEnv {
		if name := getenv(key); name != "" {
			return name, nil
		}
	}

	if lookupErr != nil {
		return "", fmt.Errorf("current user: %w", lookupErr)
	}

	return "", errNoUsername
}

// Package secrets abstracts where credentials come from. Deployments
// without a managed secret store fall back to plain environment lookup.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Provider fetches named secrets. Implementations must return a value for
// every requested name or an error naming what was missing.
type Provider interface {
	Fetch(ctx context.Context, names []string) (map[string]string, error)
}

// EnvProvider resolves secrets from environment variables. godotenv has
// already folded any .env file into the environment by the time this runs.
type EnvProvider struct{}

func (EnvProvider) Fetch(_ context.Context, names []string) (map[string]string, error) {
	values := make(map[string]string, len(names))
	var missing []string
	for _, name := range names {
		v := os.Getenv(name)
		if v == "" {
			missing = append(missing, name)
			continue
		}
		values[name] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing secrets: %s", strings.Join(missing, ", "))
	}
	return values, nil
}

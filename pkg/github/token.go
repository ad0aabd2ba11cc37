package github

import (
	"os"

	"github.com/spf13/viper"
)

/*
ResolveToken resolves the effective GitHub credential for a single call.
Precedence is strict: an explicit per-call token beats the configured
github.token, which beats the GITHUB_TOKEN environment variable.
*/
func ResolveToken(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if configured := viper.GetString("github.token"); configured != "" {
		return configured, nil
	}

	if env := os.Getenv("GITHUB_TOKEN"); env != "" {
		return env, nil
	}

	return "", ErrMissingCredential
}

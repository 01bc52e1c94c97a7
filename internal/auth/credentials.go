package auth

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/sitepolicy/pkg/config"
)

// Source says where a credential came from.
type Source string

const (
	SourceFlag        Source = "flag"
	SourceFile        Source = "file"
	SourceXAuthEnv    Source = "X_AUTH_TOKEN"
	SourceAuthEnv     Source = "AUTH_TOKEN"
	SourceInteractive Source = "interactive"
)

// Credential is the outcome of token resolution. Token is empty for
// SourceInteractive.
type Credential struct {
	Token  string
	Source Source
	Path   string
}

// Describe returns the operator-facing line for the chosen source.
func (c Credential) Describe() string {
	switch c.Source {
	case SourceFlag:
		return "Authenticating using Auth-Token from CLI ARGS"
	case SourceFile:
		return "Authenticating using Auth-Token from file " + c.Path
	case SourceXAuthEnv:
		return "Authenticating using environment variable X_AUTH_TOKEN"
	case SourceAuthEnv:
		return "Authenticating using environment variable AUTH_TOKEN"
	default:
		return "Authenticating using interactive login"
	}
}

// ResolveToken picks the first available token: --token, then the
// trimmed contents of --authtokenfile, then X_AUTH_TOKEN, then
// AUTH_TOKEN. With none of them the credential is interactive.
// Empty environment values count as unset.
func ResolveToken(cfg *config.Config, env *config.Env) (Credential, error) {
	if token := strings.TrimSpace(cfg.Token); token != "" {
		return Credential{Token: token, Source: SourceFlag}, nil
	}

	if path := strings.TrimSpace(cfg.AuthTokenFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Credential{}, fmt.Errorf("failed to read auth token file: %w", err)
		}
		token := strings.TrimSpace(string(data))
		if token == "" {
			return Credential{}, fmt.Errorf("auth token file %s is empty", path)
		}
		return Credential{Token: token, Source: SourceFile, Path: path}, nil
	}

	if env != nil {
		if env.XAuthToken != "" {
			return Credential{Token: env.XAuthToken, Source: SourceXAuthEnv}, nil
		}
		if env.AuthToken != "" {
			return Credential{Token: env.AuthToken, Source: SourceAuthEnv}, nil
		}
	}

	return Credential{Source: SourceInteractive}, nil
}

package config

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/viper"
)

// runTokenCommand executes a shell command and returns its trimmed stdout.
// Swapped out in tests.
var runTokenCommand = func(command string) (string, error) {
	out, err := exec.Command("sh", "-c", command).Output()
	if err != nil {
		return "", fmt.Errorf("auth.token_cmd failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ResolveToken walks the token chain: auth.token literal, then the variable
// named by auth.token_env, then the output of auth.token_cmd. An empty
// result from every link is not an error here; commands that need the API
// complain when they find no token.
func ResolveToken(v *viper.Viper) (string, error) {
	if token := strings.TrimSpace(v.GetString("auth.token")); token != "" {
		return token, nil
	}
	if name := strings.TrimSpace(v.GetString("auth.token_env")); name != "" {
		if token := strings.TrimSpace(os.Getenv(name)); token != "" {
			return token, nil
		}
	}
	if command := strings.TrimSpace(v.GetString("auth.token_cmd")); command != "" {
		return runTokenCommand(command)
	}
	return "", nil
}

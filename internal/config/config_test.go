package config

import (
	"errors"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := NewViper()
	v.Set("auth.token", "tok_literal")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "me", cfg.Username)
	assert.Equal(t, 0, cfg.FetchLimit)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "https://www.beeminder.com/api/v1", cfg.APIBaseURL)
	assert.NotEmpty(t, cfg.BackupPath)
}

func TestLoad_NegativeFetchLimitRejected(t *testing.T) {
	v := NewViper()
	v.Set("fetch.limit", -3)

	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.limit")
}

func TestResolveToken_LiteralWins(t *testing.T) {
	t.Setenv("WAGGLE_TEST_TOKEN", "tok_from_env")

	v := NewViper()
	v.Set("auth.token", "tok_literal")
	v.Set("auth.token_env", "WAGGLE_TEST_TOKEN")

	token, err := ResolveToken(v)
	require.NoError(t, err)
	assert.Equal(t, "tok_literal", token)
}

func TestResolveToken_EnvVariable(t *testing.T) {
	t.Setenv("WAGGLE_TEST_TOKEN", "  tok_from_env\n")

	v := NewViper()
	v.Set("auth.token_env", "WAGGLE_TEST_TOKEN")

	token, err := ResolveToken(v)
	require.NoError(t, err)
	assert.Equal(t, "tok_from_env", token)
}

func TestResolveToken_CommandOutput(t *testing.T) {
	orig := runTokenCommand
	t.Cleanup(func() { runTokenCommand = orig })
	runTokenCommand = func(command string) (string, error) {
		assert.Equal(t, "pass show beeminder", command)
		return "tok_from_cmd", nil
	}

	v := NewViper()
	v.Set("auth.token_cmd", "pass show beeminder")

	token, err := ResolveToken(v)
	require.NoError(t, err)
	assert.Equal(t, "tok_from_cmd", token)
}

func TestResolveToken_CommandFailurePropagates(t *testing.T) {
	orig := runTokenCommand
	t.Cleanup(func() { runTokenCommand = orig })
	boom := errors.New("exit status 1")
	runTokenCommand = func(string) (string, error) { return "", boom }

	v := NewViper()
	v.Set("auth.token_cmd", "false")

	_, err := ResolveToken(v)
	assert.ErrorIs(t, err, boom)
}

func TestResolveToken_NothingConfiguredIsEmpty(t *testing.T) {
	token, err := ResolveToken(viper.New())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestEditorCommand_Chain(t *testing.T) {
	t.Setenv("EDITOR", "")
	assert.Equal(t, "nvim", Config{}.EditorCommand())

	t.Setenv("EDITOR", "vi")
	assert.Equal(t, "vi", Config{}.EditorCommand())

	assert.Equal(t, "emacsclient -t", Config{Editor: "emacsclient -t"}.EditorCommand())
}

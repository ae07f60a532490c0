package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsmith/internal/app"
)

func TestGetAppFromContext(t *testing.T) {
	_, err := GetAppFromContext(context.Background())
	assert.Error(t, err)

	instance := &app.App{}
	ctx := context.WithValue(context.Background(), appKey, instance)
	got, err := GetAppFromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, instance, got)
}

func TestCommandsRegistered(t *testing.T) {
	expected := []string{
		"add", "suggest", "tag", "batch", "list", "show", "delete",
		"catalog", "usage", "serve", "worker", "doctor",
	}
	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "command %q not registered", name)
	}
}

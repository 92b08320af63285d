package logctx

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests swap slog.Default() and must not run in parallel.

func TestFrom_DefaultWhenMissing(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def := Discard()
	slog.SetDefault(def)

	require.Equal(t, def, From(context.Background()))
}

func TestIntoFrom_RoundTrip(t *testing.T) {
	l := Discard()
	ctx := Into(context.Background(), l)
	require.Equal(t, l, From(ctx))
}

func TestFrom_IgnoresNilLogger(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def := Discard()
	slog.SetDefault(def)

	var nilLogger *slog.Logger
	ctx := context.WithValue(context.Background(), ctxKey{}, nilLogger)
	require.Equal(t, def, From(ctx))
}

func TestInto_ChildShadowsParent(t *testing.T) {
	parentL, childL := Discard(), Discard()
	parent := Into(context.Background(), parentL)
	child := Into(parent, childL)

	assert.Equal(t, childL, From(child))
	assert.Equal(t, parentL, From(parent))
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer

	New(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	New(&buf, true).Debug("shown", "k", "v")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "k=v")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	NewJSON(&buf, slog.LevelInfo).Info("ranked", "matches", 3)
	assert.Contains(t, buf.String(), `"msg":"ranked"`)
	assert.Contains(t, buf.String(), `"matches":3`)
}

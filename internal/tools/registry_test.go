package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoTool struct {
	name string
	fail bool
}

func (e *echoTool) Name() string        { return e.name }
func (e *echoTool) Description() string { return "echoes its args back" }
func (e *echoTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	if e.fail {
		return nil, errors.New("boom")
	}
	return args, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	tool := &echoTool{name: "echo"}
	r.Register("echo", tool)

	got, ok := r.Get("echo")
	require.True(t, ok)
	assert.Same(t, Tool(tool), got)
}

func TestRegistry_GetUnknownReturnsFalse(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get("ghost")
	assert.False(t, ok)
}

func TestRegistry_HasTool(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.HasTool("echo"))
	r.Register("echo", &echoTool{name: "echo"})
	assert.True(t, r.HasTool("echo"))
}

func TestRegistry_ListTools(t *testing.T) {
	r := NewRegistry()
	r.Register("echo", &echoTool{name: "echo"})
	r.Register("calc", &echoTool{name: "calc"})

	names := r.ListTools()
	assert.ElementsMatch(t, []string{"echo", "calc"}, names)
}

func TestRegistry_RegisterOverwritesLastWriteWins(t *testing.T) {
	r := NewRegistry()
	first := &echoTool{name: "echo"}
	second := &echoTool{name: "echo"}
	r.Register("echo", first)
	r.Register("echo", second)

	got, ok := r.Get("echo")
	require.True(t, ok)
	assert.Same(t, Tool(second), got)
}

func TestRegistry_ExecuteSuccess(t *testing.T) {
	r := NewRegistry()
	r.Register("echo", &echoTool{name: "echo"})

	out, err := r.Execute(context.Background(), "echo", map[string]any{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1}, out)
}

func TestRegistry_ExecuteNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Execute(context.Background(), "ghost", nil)
	require.Error(t, err)
}

func TestRegistry_ExecutePropagatesToolError(t *testing.T) {
	r := NewRegistry()
	r.Register("broken", &echoTool{name: "broken", fail: true})

	_, err := r.Execute(context.Background(), "broken", nil)
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
}

func TestRegistry_ConcurrentRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	done := make(chan struct{})

	go func() {
		for i := 0; i < 100; i++ {
			r.Register("echo", &echoTool{name: "echo"})
		}
		close(done)
	}()

	for i := 0; i < 100; i++ {
		r.Get("echo")
	}
	<-done
}

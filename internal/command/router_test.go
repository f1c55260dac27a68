package command

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo(text string) HandlerFunc {
	return func(_ context.Context, _ *Context) Reply {
		return Reply{Text: text}
	}
}

func TestRegisterValidation(t *testing.T) {
	r := NewRouter()

	tests := []struct {
		name string
		cmd  Command
		want error
	}{
		{name: "empty name", cmd: Command{Handler: echo("x")}, want: ErrInvalidCommand},
		{name: "leading slash", cmd: Command{Name: "/start", Handler: echo("x")}, want: ErrInvalidCommand},
		{name: "space", cmd: Command{Name: "a b", Handler: echo("x")}, want: ErrInvalidCommand},
		{name: "nil handler", cmd: Command{Name: "start"}, want: ErrInvalidCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, r.Register(tt.cmd), tt.want)
		})
	}

	require.NoError(t, r.Register(Command{Name: "start", Handler: echo("x")}))
	assert.ErrorIs(t, r.Register(Command{Name: "start", Handler: echo("y")}), ErrDuplicateCommand)
	assert.Len(t, r.Commands(), 1)
}

func TestDispatch(t *testing.T) {
	r := NewRouter()
	require.NoError(t, r.Register(Command{Name: "start", Handler: echo("hello")}))
	require.NoError(t, r.Register(Command{Name: "Start", Handler: echo("HELLO")}))

	reply, ok := r.Dispatch(context.Background(), "start", &Context{})
	require.True(t, ok)
	assert.Equal(t, "hello", reply.Text)

	reply, ok = r.Dispatch(context.Background(), "Start", nil)
	require.True(t, ok)
	assert.Equal(t, "HELLO", reply.Text)

	_, ok = r.Dispatch(context.Background(), "unknown", &Context{})
	assert.False(t, ok)
}

func TestMiddlewareOrder(t *testing.T) {
	var trace []string
	mark := func(tag string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, cc *Context) Reply {
				trace = append(trace, tag)
				return next(ctx, cc)
			}
		}
	}
	stop := func(next HandlerFunc) HandlerFunc {
		return func(_ context.Context, _ *Context) Reply {
			trace = append(trace, "stop")
			return Reply{Text: "blocked"}
		}
	}

	r := NewRouter()
	called := false
	require.NoError(t, r.Register(Command{
		Name: "dni",
		Handler: func(_ context.Context, _ *Context) Reply {
			called = true
			return Reply{Text: "ok"}
		},
		Middleware: []Middleware{mark("outer"), stop, mark("inner")},
	}))

	reply, ok := r.Dispatch(context.Background(), "dni", &Context{})
	require.True(t, ok)
	assert.Equal(t, "blocked", reply.Text)
	assert.False(t, called)
	assert.Equal(t, []string{"outer", "stop"}, trace)
}

func TestCommandsKeepsRegistrationOrder(t *testing.T) {
	r := NewRouter()
	for _, name := range []string{"start", "me", "cmds", "dni", "ruc"} {
		require.NoError(t, r.Register(Command{Name: name, Description: name + " desc", Handler: echo(name)}))
	}

	var names []string
	for _, cmd := range r.Commands() {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"start", "me", "cmds", "dni", "ruc"}, names)

	cmd, ok := r.Lookup("dni")
	require.True(t, ok)
	assert.Equal(t, "dni desc", cmd.Description)
	_, ok = r.Lookup("nope")
	assert.False(t, ok)
}

func TestConcurrentDispatch(t *testing.T) {
	r := NewRouter()
	require.NoError(t, r.Register(Command{Name: "me", Handler: func(_ context.Context, cc *Context) Reply {
		return Reply{Text: cc.DisplayName}
	}}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			reply, ok := r.Dispatch(context.Background(), "me", &Context{UserID: id, DisplayName: "u"})
			assert.True(t, ok)
			assert.Equal(t, "u", reply.Text)
		}(int64(i))
	}
	wg.Wait()
}

func TestParse(t *testing.T) {
	tests := []struct {
		text     string
		wantName string
		wantArgs []string
		wantOK   bool
	}{
		{text: "/start", wantName: "start", wantArgs: []string{}, wantOK: true},
		{text: "/dni 12345678", wantName: "dni", wantArgs: []string{"12345678"}, wantOK: true},
		{text: "/dni@codex_bot  12345678  extra", wantName: "dni", wantArgs: []string{"12345678", "extra"}, wantOK: true},
		{text: "  /ruc\t20123456789", wantName: "ruc", wantArgs: []string{"20123456789"}, wantOK: true},
		{text: "hello /dni", wantOK: false},
		{text: "/", wantOK: false},
		{text: "/@bot", wantOK: false},
		{text: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, args, ok := Parse(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantName, name)
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestContextArg(t *testing.T) {
	cc := &Context{Args: []string{"a"}}
	assert.Equal(t, "a", cc.Arg(0))
	assert.Equal(t, "", cc.Arg(1))
	assert.Equal(t, "", cc.Arg(-1))

	var nilCtx *Context
	assert.Equal(t, "", nilCtx.Arg(0))
}

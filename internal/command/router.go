// Package command routes slash commands to handlers independently of the
// messaging transport.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrInvalidCommand is returned by Register for a malformed command.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrDuplicateCommand is returned by Register when the name is taken.
	ErrDuplicateCommand = errors.New("command already registered")
)

// Context carries one command invocation.
type Context struct {
	UserID      int64
	DisplayName string
	ChatID      int64
	MessageID   int
	Args        []string
}

// Arg returns the i-th argument or "" when absent.
func (c *Context) Arg(i int) string {
	if c == nil || i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// Reply is the text a handler answers with. Markdown marks Text as MarkdownV2.
type Reply struct {
	Text     string
	Markdown bool
}

// HandlerFunc handles one command invocation.
type HandlerFunc func(ctx context.Context, cc *Context) Reply

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// Command binds a name to its handler.
type Command struct {
	// Name is case-sensitive and has no leading slash.
	Name        string
	Description string
	Handler     HandlerFunc
	// Middleware is applied in order, the first entry outermost.
	Middleware []Middleware
}

// Router maps command names to handlers. It is safe for concurrent use and
// holds no lock while a handler runs.
type Router struct {
	mu       sync.RWMutex
	order    []string
	commands map[string]Command
	handlers map[string]HandlerFunc
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		commands: make(map[string]Command),
		handlers: make(map[string]HandlerFunc),
	}
}

// Register adds cmd to the router.
func (r *Router) Register(cmd Command) error {
	if cmd.Name == "" || strings.HasPrefix(cmd.Name, "/") || strings.ContainsAny(cmd.Name, " \t\n@") {
		return fmt.Errorf("%w: bad name %q", ErrInvalidCommand, cmd.Name)
	}
	if cmd.Handler == nil {
		return fmt.Errorf("%w: %q has no handler", ErrInvalidCommand, cmd.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateCommand, cmd.Name)
	}

	r.commands[cmd.Name] = cmd
	r.handlers[cmd.Name] = chain(cmd.Handler, cmd.Middleware)
	r.order = append(r.order, cmd.Name)
	return nil
}

// Dispatch runs the handler registered under name. The boolean is false
// when no such command exists.
func (r *Router) Dispatch(ctx context.Context, name string, cc *Context) (Reply, bool) {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return Reply{}, false
	}
	if cc == nil {
		cc = &Context{}
	}
	return h(ctx, cc), true
}

// Lookup returns the command registered under name.
func (r *Router) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands returns the registered commands in registration order.
func (r *Router) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

func chain(h HandlerFunc, mw []Middleware) HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Parse splits a message such as "/dni@codex_bot 12345678" into the command
// name and its arguments. ok is false when text is not a command.
func Parse(text string) (name string, args []string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}

	name = strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return "", nil, false
	}
	return name, fields[1:], true
}

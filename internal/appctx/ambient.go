package appctx

import "context"

type contextKey struct{}

// Install attaches the app context to a context.Context subtree. This is the
// runtime-adapter layer; core code should receive *Context by parameter.
func Install(parent context.Context, c *Context) context.Context {
	return context.WithValue(parent, contextKey{}, c)
}

// FromContext recovers the installed app context. Reads outside an installed
// subtree fail fast.
func FromContext(ctx context.Context) (*Context, error) {
	c, ok := ctx.Value(contextKey{}).(*Context)
	if !ok || c == nil {
		return nil, ErrNotInstalled
	}
	return c, nil
}

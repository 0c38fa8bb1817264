package fpmatch

import (
	"github.com/npillmayer/fpmatch/access"
	"github.com/npillmayer/fpmatch/compile"
)

type config struct {
	ctx    *compile.BuildContext
	policy access.Policy
	lazy   bool
}

// Option is a type to help configuring matchers at creation time.
type Option func(config) config

// WithContext makes the matcher compile its patterns with ctx. Key and When
// handles used in pattern specs have to be created by the same context.
func WithContext(ctx *compile.BuildContext) Option {
	return func(c config) config {
		c.ctx = ctx
		return c
	}
}

// DestructurePolicy sets the policy for replaying access paths, both in
// destructuring patterns and in Extract results. Default is access.Strict.
func DestructurePolicy(p access.Policy) Option {
	return func(c config) config {
		c.policy = p
		return c
	}
}

// Lazy defers compiling a case until a value is matched against it.
// Malformed pattern specs are then reported by Match instead of New.
func Lazy() Option {
	return func(c config) config {
		c.lazy = true
		return c
	}
}

func configure(opts []Option) config {
	c := config{policy: access.Strict}
	for _, option := range opts {
		c = option(c)
	}
	if c.ctx == nil {
		c.ctx = compile.NewContext()
	}
	return c
}

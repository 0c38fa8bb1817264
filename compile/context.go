package compile

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/npillmayer/fpmatch/bind"
	"github.com/npillmayer/fpmatch/pattern"
	"github.com/npillmayer/fpmatch/regex"
)

// BuildContext is the arena for deferred sub-patterns of one matcher
// construction session. It also carries the capabilities used while building:
// the regex compiler and the reflection of parameter names.
type BuildContext struct {
	mu       sync.Mutex
	arena    []deferred
	compiled map[string]pattern.Pattern // deferred patterns by handle and bind names
	regex    regex.Compiler
	reflect  bind.Reflection
}

type deferred struct {
	args []any
	val  []any // key handles: default value spec
	bind string
}

// Option configures a build context.
type Option struct {
	config func(*BuildContext)
}

// WithRegex sets the regex compiler. The default uses Go's regexp package.
func WithRegex(c regex.Compiler) Option {
	return Option{config: func(ctx *BuildContext) {
		ctx.regex = c
	}}
}

// WithReflection sets the source of parameter names for plain functions.
func WithReflection(r bind.Reflection) Option {
	return Option{config: func(ctx *BuildContext) {
		ctx.reflect = r
	}}
}

// NewContext creates a build context.
func NewContext(opts ...Option) *BuildContext {
	ctx := &BuildContext{
		compiled: make(map[string]pattern.Pattern),
		regex:    regex.Compile,
		reflect:  bind.NoReflection,
	}
	for _, option := range opts {
		option.config(ctx)
	}
	return ctx
}

func (ctx *BuildContext) add(d deferred) int {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.arena = append(ctx.arena, d)
	return len(ctx.arena) - 1
}

func (ctx *BuildContext) entry(id int) deferred {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.arena[id]
}

// Callable turns a function into a Callable, using the context's reflection.
func (ctx *BuildContext) Callable(fn any) (bind.Callable, error) {
	return bind.Wrap(fn, ctx.reflect)
}

// --- Handles ---------------------------------------------------------------

// KeyHandle references a deferred key pattern. It is used as a key of a
// keyed structure.
type KeyHandle struct {
	ctx *BuildContext
	id  int
}

// Key creates a deferred key pattern. Without arguments the key pattern is a
// wildcard, which makes the entry pattern search entries by value.
func (ctx *BuildContext) Key(args ...any) KeyHandle {
	id := ctx.add(deferred{args: args})
	return KeyHandle{ctx: ctx, id: id}
}

// As returns a handle for the same key pattern, capturing the key as name.
func (k KeyHandle) As(name string) KeyHandle {
	d := k.ctx.entry(k.id)
	d.bind = name
	return KeyHandle{ctx: k.ctx, id: k.ctx.add(d)}
}

// Val returns a handle for the same key pattern with a value spec, used for
// entries which do not specify their value.
func (k KeyHandle) Val(args ...any) KeyHandle {
	d := k.ctx.entry(k.id)
	d.val = args
	return KeyHandle{ctx: k.ctx, id: k.ctx.add(d)}
}

// WhenHandle references a deferred sub-pattern.
type WhenHandle struct {
	ctx *BuildContext
	id  int
}

// When creates a deferred sub-pattern. It is compiled when a pattern spec
// referencing it is compiled, with the bind names of that spec.
func (ctx *BuildContext) When(args ...any) WhenHandle {
	id := ctx.add(deferred{args: args})
	return WhenHandle{ctx: ctx, id: id}
}

func (ctx *BuildContext) resolveWhen(h WhenHandle, b *builder) (pattern.Pattern, error) {
	if h.ctx != ctx {
		return nil, buildErrorf("handle %d belongs to a different build context", h.id)
	}
	key := cacheKey(h.id, b.binds)
	ctx.mu.Lock()
	p, ok := ctx.compiled[key]
	ctx.mu.Unlock()
	if ok {
		return p, nil
	}
	d := ctx.entry(h.id)
	p, err := b.build(d.args)
	if err != nil {
		return nil, err
	}
	ctx.mu.Lock()
	ctx.compiled[key] = p
	ctx.mu.Unlock()
	return p, nil
}

func (ctx *BuildContext) resolveKey(h KeyHandle, val any, b *builder) (pattern.AssocPattern, error) {
	if h.ctx != ctx {
		return pattern.AssocPattern{}, buildErrorf("handle %d belongs to a different build context", h.id)
	}
	d := ctx.entry(h.id)
	var kp pattern.Pattern = pattern.Wildcard()
	if len(d.args) > 0 {
		var err error
		if kp, err = b.build(d.args); err != nil {
			return pattern.AssocPattern{}, err
		}
	}
	if d.bind != "" {
		kp = kp.Bound(d.bind)
	}
	var vp pattern.Pattern
	var err error
	switch {
	case val != nil:
		vp, err = b.arg(val)
	case len(d.val) > 0:
		vp, err = b.build(d.val)
	}
	if err != nil {
		return pattern.AssocPattern{}, err
	}
	return pattern.Assoc(kp, vp), nil
}

func cacheKey(id int, binds map[string]bool) string {
	names := make([]string, 0, len(binds))
	for n := range binds {
		names = append(names, n)
	}
	sort.Strings(names)
	return strconv.Itoa(id) + ":" + strings.Join(names, ",")
}

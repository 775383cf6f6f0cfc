package semantic

import (
	"github.com/fluxscript/flux/internal/diagnostics"
	"github.com/fluxscript/flux/internal/types"
)

// Context carries everything a single file's inference pass shares: the
// substitution being built up, the fresh-variable source (shared across
// every file of a package group, per spec.md §9, so two files never mint
// colliding variables), and the accumulated diagnostics. Flux keeps
// checking after an error instead of aborting, so Context.Errors grows
// across the whole pass rather than short-circuiting it (spec.md §4.D,
// §7).
type Context struct {
	File   string
	Fresh  *types.Fresher
	Subst  *types.Subst
	Errors *diagnostics.List

	// undefined caches the placeholder type minted the first time an
	// identifier is found to be undefined, so repeated uses of the same
	// unbound name share one fresh variable instead of each producing its
	// own cascading error (spec.md §4.D "Identifier").
	undefined map[string]types.Monotype

	returnStack []types.Monotype
}

// NewContext starts a fresh inference pass over one file, sharing fresh
// and subst with the rest of its package group.
func NewContext(file string, fresh *types.Fresher, subst *types.Subst) *Context {
	return &Context{
		File:      file,
		Fresh:     fresh,
		Subst:     subst,
		Errors:    &diagnostics.List{},
		undefined: map[string]types.Monotype{},
	}
}

func (c *Context) pushReturn(t types.Monotype) { c.returnStack = append(c.returnStack, t) }
func (c *Context) popReturn()                  { c.returnStack = c.returnStack[:len(c.returnStack)-1] }
func (c *Context) currentReturn() (types.Monotype, bool) {
	if len(c.returnStack) == 0 {
		return nil, false
	}
	return c.returnStack[len(c.returnStack)-1], true
}

func (c *Context) fresh() types.Monotype { return types.Var{V: c.Fresh.Fresh()} }

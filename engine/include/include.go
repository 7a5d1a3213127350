/*
Package include implements `diag:include` expansion (spec §4.3): reading a
referenced svg++ source, compiling it recursively with a shared template
context, and wrapping the result in a positioned group.

Compile-time context (include depth, the include stack, and the depth cap)
is threaded as an immutable Context value rather than through defaulted
function parameters, per the Design Note in spec §9; the directory a
relative include path resolves against is passed as a separate argument.
*/
package include

import (
	"bytes"
	"path/filepath"
	"strconv"

	"github.com/npillmayer/schuko/tracing"

	"github.com/svgppc/svgpp/core"
	"github.com/svgppc/svgpp/core/dimen"
	"github.com/svgppc/svgpp/engine/xmltree"
)

func tracer() tracing.Trace { return tracing.Select("svgpp.include") }

// DefaultMaxDepth is the include recursion cap (spec §4.3).
const DefaultMaxDepth = 10

const (
	tagInclude = "include"
	tagDiagram = "diagram"
)

// Context is the immutable per-compile state threaded through recursive
// compilation: the stack of canonicalized paths currently being compiled
// (for cycle detection), the current recursion depth, and the maximum
// depth allowed.
type Context struct {
	Stack    []string
	Depth    int
	MaxDepth int
}

// NewContext returns a root Context with the default depth cap.
func NewContext() Context {
	return Context{MaxDepth: DefaultMaxDepth}
}

// Push returns a new Context with path added to the stack, or an
// E_INCLUDE_CYCLE / E_INCLUDE_DEPTH error if that would violate a limit.
func (c Context) Push(path string) (Context, error) {
	if c.Depth+1 > c.MaxDepth {
		return c, core.New(core.EIncludeDepth, "include depth exceeds maximum of %d", c.MaxDepth).
			WithHint("reduce nested diag:include chains or restructure the document")
	}
	for _, p := range c.Stack {
		if p == path {
			return c, core.New(core.EIncludeCycle, "include cycle detected at %s", path).
				WithHint("diag:include files must not include themselves, directly or transitively")
		}
	}
	next := Context{Depth: c.Depth + 1, MaxDepth: c.MaxDepth}
	next.Stack = append(append([]string{}, c.Stack...), path)
	return next, nil
}

// CompileFunc compiles an already-parsed svg++ document (rooted at diag:diagram)
// to its fully-expanded SVG children, given the include Context to carry
// through any further nested includes. It is supplied by the top-level
// compile package to avoid an import cycle between include and compile.
type CompileFunc func(doc *xmltree.Node, baseDir string, ctx Context) ([]*xmltree.Node, error)

// ReadFunc reads the bytes of a source file; factored out so tests can
// supply an in-memory filesystem instead of touching disk.
type ReadFunc func(path string) ([]byte, error)

// ExpandAll recursively expands every diag:include element under root.
func ExpandAll(root *xmltree.Node, diagNS, baseDir string, ctx Context, read ReadFunc, compile CompileFunc) error {
	return expandChildren(root, diagNS, baseDir, ctx, read, compile)
}

func expandChildren(n *xmltree.Node, diagNS, baseDir string, ctx Context, read ReadFunc, compile CompileFunc) error {
	for i := 0; i < len(n.Children); i++ {
		child := n.Children[i]
		if child.Name.Space == diagNS && child.Name.Local == tagInclude {
			replacement, err := expandOne(child, diagNS, baseDir, ctx, read, compile)
			if err != nil {
				return err
			}
			n.ReplaceChildAt(i, replacement)
			continue
		}
		if err := expandChildren(child, diagNS, baseDir, ctx, read, compile); err != nil {
			return err
		}
	}
	return nil
}

func expandOne(inc *xmltree.Node, diagNS, baseDir string, ctx Context, read ReadFunc, compile CompileFunc) (*xmltree.Node, error) {
	src, ok := inc.Attr("", "src")
	if !ok || src == "" {
		return nil, core.New(core.EIncludeArgs, "diag:include requires a src attribute")
	}
	x := dimen.ParseLength(inc.AttrDefault("", "x", "0"), 0)
	y := dimen.ParseLength(inc.AttrDefault("", "y", "0"), 0)
	scale := dimen.ParseLength(inc.AttrDefault("", "scale", "1"), 1)
	if scale <= 0 {
		return nil, core.New(core.EIncludeArgs, "diag:include scale must be > 0, got %v", scale)
	}
	id, hasID := inc.Attr("", "id")

	resolved := filepath.Join(baseDir, src)
	canon, err := filepath.Abs(resolved)
	if err != nil {
		canon = resolved
	}

	nextCtx, err := ctx.Push(canon)
	if err != nil {
		return nil, err
	}

	raw, err := read(resolved)
	if err != nil {
		return nil, core.Wrap(err, core.EIncludeNotFound, "cannot read include src %q", src).WithRetryable(true)
	}

	doc, err := xmltree.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, core.Wrap(err, core.EIncludeParse, "malformed XML in include src %q", src)
	}
	if doc.Name.Space != diagNS || doc.Name.Local != tagDiagram {
		return nil, core.New(core.EIncludeRoot, "include src %q root is not a diag:diagram", src)
	}

	childDir := filepath.Dir(resolved)
	children, err := compile(doc, childDir, nextCtx)
	if err != nil {
		return nil, err
	}

	tracer().Debugf("expanded include %q at depth %d", src, nextCtx.Depth)

	g := xmltree.NewElement("", "g")
	g.SetAttr("", "transform", translateScale(x, y, scale))
	if hasID {
		g.SetAttr("", "id", id)
	}
	for _, c := range children {
		g.Append(c.Clone())
	}
	return g, nil
}

func translateScale(x, y, scale float64) string {
	return "translate(" + ftoa(x) + " " + ftoa(y) + ") scale(" + ftoa(scale) + ")"
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// VerifyUniqueIDs asserts that every "id" attribute under root appears at
// most once, per spec §4.3 ("after all includes are expanded").
func VerifyUniqueIDs(root *xmltree.Node) error {
	seen := map[string]bool{}
	var dupe string
	root.Walk(func(n *xmltree.Node) bool {
		if dupe != "" {
			return false
		}
		if id, ok := n.Attr("", "id"); ok {
			if seen[id] {
				dupe = id
				return false
			}
			seen[id] = true
		}
		return true
	})
	if dupe != "" {
		return core.New(core.EIncludeIDCollision, "duplicate id %q after include expansion", dupe)
	}
	return nil
}

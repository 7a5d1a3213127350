package graph

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/svgppc/svgpp/core"
)

// GraphvizTimeout bounds how long the `dot` subprocess may run before it is
// killed and treated as a layout failure, per spec §7's external-process
// resource model.
const GraphvizTimeout = 5 * time.Second

// Runner delegates graph layout to an external Graphviz installation. It is
// an interface so compile-time tests can substitute a fake without
// requiring `dot` to be installed in CI. engine selects the layout
// algorithm ("dot", "circo", "twopi", …) via Graphviz's own `-K` flag,
// which lets every front end run any algorithm regardless of binary name.
type Runner interface {
	Layout(ctx context.Context, dot, engine string) (*PlainLayout, error)
}

// subprocessRunner shells out to the `dot` binary on PATH.
type subprocessRunner struct{}

// NewSubprocessRunner returns the default Runner, which invokes the real
// `dot` command.
func NewSubprocessRunner() Runner { return subprocessRunner{} }

// Available reports whether a `dot` binary can be found on PATH.
func Available() bool {
	_, err := exec.LookPath("dot")
	return err == nil
}

func (subprocessRunner) Layout(ctx context.Context, dot, engine string) (*PlainLayout, error) {
	if !Available() {
		return nil, core.New(core.EGraphvizUnavailable, "graphviz dot command not found on PATH").
			WithHint("install graphviz, or use layout=\"layered\" to use the built-in layered layout").
			WithRetryable(true)
	}
	ctx, cancel := context.WithTimeout(ctx, GraphvizTimeout)
	defer cancel()

	args := []string{"-Tplain"}
	if engine != "" && engine != "dot" {
		args = append(args, "-K"+engine)
	}
	cmd := exec.CommandContext(ctx, "dot", args...)
	cmd.Stdin = strings.NewReader(dot)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, core.Wrap(err, core.EGraphLayoutFailed, "graphviz dot timed out after %s", GraphvizTimeout).WithRetryable(true)
		}
		return nil, core.Wrap(err, core.EGraphLayoutFailed, "graphviz dot failed: %s", strings.TrimSpace(stderr.String()))
	}

	layout, err := ParsePlain(bufio.NewScanner(bytes.NewReader(stdout.Bytes())))
	if err != nil {
		return nil, core.Wrap(err, core.EGraphLayoutParse, "could not parse graphviz plain output")
	}
	return layout, nil
}

// LayoutWithGraphviz delegates layout to Graphviz (spec §4.6 step 4): emit
// DOT for the requested routing style, run it through the Runner with the
// engine matching the requested layout (dot/circo/twopi), and apply the
// resulting node placement and edge routes back onto g.
func LayoutWithGraphviz(ctx context.Context, g *Graph, runner Runner, engine, routing string) error {
	if err := g.Validate(); err != nil {
		return err
	}
	dotSrc := ToDOT(g, splinesFor(routing))
	layout, err := runner.Layout(ctx, dotSrc, engine)
	if err != nil {
		return err
	}
	ApplyPlainLayout(g, layout)
	tracer().Debugf("graphviz %s layout placed %d nodes", engine, len(layout.Nodes))
	return nil
}

// splinesFor maps a diag:graph routing value onto the Graphviz graph
// attribute that produces the closest equivalent edge shape.
func splinesFor(routing string) string {
	switch routing {
	case "polyline", "line":
		return "polyline"
	case "ortho":
		return "ortho"
	case "spline", "curved", "auto", "":
		return "spline"
	default:
		return "spline"
	}
}

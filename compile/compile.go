/*
Package compile wires every engine package into the ten-stage pipeline
described in spec §2: parse, template, include, style, graph, anchor/arrow
collection, generic render, bounds, and finally arrow emission.
*/
package compile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/npillmayer/schuko/tracing"

	"github.com/svgppc/svgpp/core"
	"github.com/svgppc/svgpp/engine/anchor"
	"github.com/svgppc/svgpp/engine/arrow"
	"github.com/svgppc/svgpp/engine/bounds"
	"github.com/svgppc/svgpp/engine/graph"
	"github.com/svgppc/svgpp/engine/include"
	"github.com/svgppc/svgpp/engine/oracle"
	"github.com/svgppc/svgpp/engine/render"
	"github.com/svgppc/svgpp/engine/style"
	"github.com/svgppc/svgpp/engine/template"
	"github.com/svgppc/svgpp/engine/xmltree"
)

func tracer() tracing.Trace { return tracing.Select("svgpp.compile") }

const tagDiagram = "diagram"

// Options configures a Compiler.
type Options struct {
	// TemplateSources are already-parsed shared template documents (e.g.
	// from a --templates glob), merged before the diagram's own templates —
	// spec §2 stage 2, last-file-wins.
	TemplateSources []*xmltree.Node

	// GraphvizRunner overrides the default `dot` subprocess runner; nil
	// selects graph.NewSubprocessRunner().
	GraphvizRunner graph.Runner

	// Oracle supplies external geometry measurement and rasterization; nil
	// selects oracle.Static{}, which only understands explicit geometry
	// attributes on plain shapes.
	Oracle oracle.Oracle
}

// Compiler holds the configuration shared across every document compiled
// with it, including recursively compiled diag:include targets.
type Compiler struct {
	Options
}

// New returns a Compiler with defaults filled in for any unset collaborator.
func New(opts Options) *Compiler {
	if opts.Oracle == nil {
		opts.Oracle = oracle.Static{}
	}
	if opts.GraphvizRunner == nil {
		opts.GraphvizRunner = graph.NewSubprocessRunner()
	}
	return &Compiler{Options: opts}
}

// CompileFile reads path from disk and compiles it, resolving diag:include
// paths relative to its directory.
func (c *Compiler) CompileFile(ctx context.Context, path string) (*xmltree.Node, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, core.Wrap(err, core.EIORead, "cannot read %q", path).WithRetryable(true)
	}
	return c.CompileBytes(ctx, raw, filepath.Dir(path))
}

// CompileBytes parses src as XML and compiles it, resolving diag:include
// paths relative to baseDir.
func (c *Compiler) CompileBytes(ctx context.Context, src []byte, baseDir string) (*xmltree.Node, error) {
	doc, err := xmltree.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, core.Wrap(err, core.EParseXML, "%v", err)
	}
	return c.CompileDocument(ctx, doc, baseDir)
}

// CompileDocument runs the full pipeline over an already-parsed document,
// producing the final <svg> root.
func (c *Compiler) CompileDocument(ctx context.Context, doc *xmltree.Node, baseDir string) (*xmltree.Node, error) {
	diagNS := doc.Name.Space
	if diagNS == "" || doc.Name.Local != tagDiagram {
		return nil, core.New(core.EParseXML, "document root is not {NS}diagram")
	}

	children, err := c.expandDocument(doc, baseDir, include.NewContext())
	if err != nil {
		return nil, err
	}
	svg := assembleSVG(doc, children, diagNS)

	if err := include.VerifyUniqueIDs(svg); err != nil {
		return nil, err
	}

	sheet := style.Extract(svg)

	if err := c.expandGraphs(ctx, svg, diagNS, sheet); err != nil {
		return nil, err
	}

	elementIDs := collectElementIDs(svg, diagNS)
	anchorSpecs, err := anchor.CollectAndValidate(svg, diagNS, elementIDs)
	if err != nil {
		return nil, err
	}
	removeAnchors(svg, diagNS)

	arrowSpecs, err := arrow.Collect(svg, diagNS)
	if err != nil {
		return nil, err
	}

	if err := c.renderChildren(ctx, svg, diagNS, sheet); err != nil {
		return nil, err
	}

	if err := bounds.Fit(ctx, svg, c.Oracle, diagNS); err != nil {
		return nil, err
	}

	boxes, err := globalBoxes(ctx, svg, c.Oracle)
	if err != nil {
		return nil, err
	}

	if err := emitArrows(svg, boxes, anchorSpecs, arrowSpecs); err != nil {
		return nil, err
	}

	svg.RemoveAttr(diagNS, "padding")
	svg.RemoveAttr(diagNS, "background")

	tracer().Debugf("compiled document into svg with %d top-level children", len(svg.Children))
	return svg, nil
}

// expandDocument collects (shared then local) templates, expands instances,
// and recursively expands every diag:include under doc. It doubles as
// include.CompileFunc for nested includes, since they share the same
// template-collection and expansion rules.
func (c *Compiler) expandDocument(doc *xmltree.Node, baseDir string, ctx include.Context) ([]*xmltree.Node, error) {
	diagNS := doc.Name.Space

	table := template.Table{}
	template.CollectShared(c.TemplateSources, diagNS, table)
	template.Collect(doc, diagNS, table)
	template.ExpandInstances(doc, table, diagNS)

	if err := include.ExpandAll(doc, diagNS, baseDir, ctx, os.ReadFile, c.expandDocument); err != nil {
		return nil, err
	}
	return doc.Children, nil
}

// renderChildren passes every top-level child of svg through the generic
// renderer, leaving svg's own attributes (including any diag:padding /
// diag:background bounds.Fit still needs) untouched.
func (c *Compiler) renderChildren(ctx context.Context, svg *xmltree.Node, diagNS string, sheet style.Sheet) error {
	r := render.New(ctx, diagNS, sheet, c.Oracle)
	rendered := make([]*xmltree.Node, 0, len(svg.Children))
	for _, child := range svg.Children {
		rc, err := r.RenderGeneric(child)
		if err != nil {
			return err
		}
		rc.Tail = child.Tail
		rendered = append(rendered, rc)
	}
	svg.Children = nil
	for _, rc := range rendered {
		svg.Append(rc)
	}
	return nil
}

// assembleSVG builds the output root, copying doc's non-diag attributes
// verbatim and preserving diag:padding/diag:background for the bounds
// stage; children are the result of template+include expansion.
func assembleSVG(doc *xmltree.Node, children []*xmltree.Node, diagNS string) *xmltree.Node {
	svg := xmltree.NewElement("", "svg")
	for _, a := range doc.Attrs {
		if a.Name.Space == diagNS {
			if a.Name.Local == "padding" || a.Name.Local == "background" {
				svg.SetAttr(diagNS, a.Name.Local, a.Value)
			}
			continue
		}
		svg.SetAttr(a.Name.Space, a.Name.Local, a.Value)
	}
	for _, c := range children {
		svg.Append(c)
	}
	return svg
}

func removeAnchors(root *xmltree.Node, diagNS string) {
	var walk func(n *xmltree.Node)
	walk = func(n *xmltree.Node) {
		i := 0
		for i < len(n.Children) {
			c := n.Children[i]
			if c.Name.Space == diagNS && c.Name.Local == "anchor" {
				n.RemoveChildAt(i)
				continue
			}
			walk(c)
			i++
		}
	}
	walk(root)
}

// collectElementIDs gathers every "id" attribute under root, excluding
// diag:anchor elements themselves — an anchor's id lives in its own
// namespace of names and must not collide with itself when anchor.
// CollectAndValidate checks it against elementIDs.
func collectElementIDs(root *xmltree.Node, diagNS string) map[string]bool {
	ids := map[string]bool{}
	root.Walk(func(n *xmltree.Node) bool {
		if n.Name.Space == diagNS && n.Name.Local == "anchor" {
			return true
		}
		if id, ok := n.Attr("", "id"); ok {
			ids[id] = true
		}
		return true
	})
	return ids
}

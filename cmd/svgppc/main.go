/*
Command svgppc is a thin exerciser for the compile package: it wires a
Compiler with the default in-process collaborators (the static geometry
fallback, a real `dot` subprocess when installed) and drives its single
`compile` subcommand from the command line. It is illustrative only — see spec §6 "CLI surface":
the real CLI, oracle, and font backend are external collaborators.
*/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/svgppc/svgpp/compile"
	"github.com/svgppc/svgpp/core"
	"github.com/svgppc/svgpp/engine/xmltree"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return fail(core.New(core.EArgs, "missing subcommand; expected compile"), "text")
	}

	switch args[0] {
	case "compile":
		return runCompile(args[1:])
	default:
		return fail(core.New(core.EArgs, "unknown subcommand %q", args[0]), "text")
	}
}

func runCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	out := fs.String("o", "", "output file (default: stdout)")
	stdout := fs.Bool("stdout", false, "write to stdout")
	errorFormat := fs.String("error-format", "text", "error report format: text|json")
	if err := fs.Parse(args); err != nil {
		return fail(core.New(core.EArgs, "%v", err), *errorFormat)
	}
	if fs.NArg() != 1 {
		return fail(core.New(core.EArgs, "compile requires exactly one input file"), *errorFormat)
	}
	path := fs.Arg(0)

	c := compile.New(compile.Options{})
	svg, err := c.CompileFile(context.Background(), path)
	if err != nil {
		return fail(err, *errorFormat)
	}

	output := xmltree.Serialize(svg)
	if *out != "" && !*stdout {
		if err := os.WriteFile(*out, []byte(output), 0o644); err != nil {
			return fail(core.Wrap(err, core.EIOWrite, "cannot write %q", *out), *errorFormat)
		}
		return 0
	}
	fmt.Print(output)
	return 0
}

func fail(err error, format string) int {
	if format == "json" {
		b, _ := json.Marshal(core.ToJSONError(err))
		fmt.Fprintln(os.Stderr, string(b))
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	return core.ExitCode(err)
}

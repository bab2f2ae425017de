// Command ashc is the Ash stage-0 compiler driver (spec §6). It wires the
// frontend, module graph, constant checker, type checker, and lowering
// contract into one pipeline: parse every input file, order them by module
// dependency, check them, lower the whole build to one LLVM module, and
// emit either textual IR or a native object file.
//
// Rebuilt on spf13/cobra in place of the teacher's hand-rolled
// util.ParseArgs, keeping the teacher's help/version/error-printing
// conventions from src/main.go.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ashc/internal/constcheck"
	"ashc/internal/diag"
	"ashc/internal/frontend"
	"ashc/internal/intern"
	"ashc/internal/lower"
	"ashc/internal/module"
	"ashc/internal/typecheck"
)

const appVersion = "ashc 0.1.0 (stage-0)"

var (
	extraInputs []string
	outputType  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printErr(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ashc <input-file> <output-file>",
		Short:         "Ash stage-0 compiler",
		Version:       appVersion,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1])
		},
	}
	root.Flags().StringArrayVar(&extraInputs, "input", nil,
		"additional input file, may be repeated")
	root.Flags().StringVar(&outputType, "output-type", "ir",
		"output kind: ir|obj")
	return root
}

// run parses, checks, and lowers the input set, writing compiled output to
// outPath. Per spec §7, every phase is all-or-nothing: if any phase fails no
// output file is written.
func run(inPath, outPath string) error {
	if outputType != "ir" && outputType != "obj" {
		return fmt.Errorf("unknown --output-type %q (want ir or obj)", outputType)
	}

	inputs := append([]string{inPath}, extraInputs...)

	reg := intern.New()
	mm := module.NewManager(reg)

	for _, path := range inputs {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		res, err := frontend.Parse(reg, path, string(src))
		if err != nil {
			return err
		}
		if err := mm.AddFile(path, res.Module, res.Imports, res.Body); err != nil {
			return err
		}
	}

	if err := mm.CheckModules(); err != nil {
		return err
	}

	files, cycles := mm.GetBuildFilesOrder()
	if len(cycles) > 0 {
		c := cycles[0]
		return diag.New(diag.ModuleError, inPath, 0, 0, "",
			"circular module dependency between %q and %q",
			reg.MustGetString(c.From), reg.MustGetString(c.To))
	}

	for _, f := range files {
		body, ok := mm.GetAST(f)
		if !ok {
			continue
		}
		constcheck.Check(body)
	}

	tc := typecheck.New(mm, reg)
	if err := tc.CheckBuild(files); err != nil {
		return err
	}

	lw := lower.New(reg, moduleNameFor(outPath))
	defer lw.Dispose()
	if err := lw.LowerBuild(mm, files); err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			printErr(cerr)
		}
	}()

	if outputType == "obj" {
		err = lw.WriteObject(out)
	} else {
		err = lw.WriteIR(out)
	}
	if err != nil {
		os.Remove(outPath)
	}
	return err
}

func moduleNameFor(outPath string) string {
	if outPath == "" {
		return "ash"
	}
	return outPath
}

var errHeadline = color.New(color.FgRed, color.Bold)

func printErr(err error) {
	if d, ok := err.(diag.Diagnostic); ok {
		fmt.Fprintln(os.Stderr, d.String())
		return
	}
	fmt.Fprintln(os.Stderr, errHeadline.Sprint("error:"), err)
}

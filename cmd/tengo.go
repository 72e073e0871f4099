package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/parser"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	_tengo "hive/lib/component/operator/tengo"
	"hive/pkg/observation"
	"hive/pkg/quad"
)

const sampleQuad = `<https://rsp.js/test_subject_0> <https://rsp.js/test_property> "21" <https://rsp.js/left> .`

func init() {
	var line string
	repl := &cobra.Command{
		Use:   "tengo",
		Short: "run REPL",
		Long:  `run tengo REPL with quad bound to a sample fact, to try filter, script and timestamp expressions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := quad.Parse(line)
			if err != nil {
				return err
			}
			r, err := newREPL(stdlib.GetModuleMap(stdlib.AllModuleNames()...), q, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			r.run(cmd.InOrStdin())
			return nil
		},
	}
	repl.Flags().StringVar(&line, "quad", sampleQuad, "n-quads statement bound to quad")
	repl.AddCommand(&cobra.Command{
		Use:   "timestamp [script]",
		Short: "evaluate a timestamp script against n-quads read from stdin.",
		Long:  `evaluate a window-join timestamp-script against every n-quads statement read from stdin.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimestamp(args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	})
	Command.AddCommand(repl)
}

func runTimestamp(script string, in io.Reader, out io.Writer) error {
	extractor, err := _tengo.NewTimestampExtractor(script)
	if err != nil {
		return err
	}
	quads, err := quad.ParseAll(in)
	if err != nil {
		return err
	}
	for _, q := range quads {
		if ts, ok := extractor.Timestamp(q); ok {
			_, _ = fmt.Fprintf(out, "%v\t%s\n", ts, q)
		} else {
			_, _ = fmt.Fprintf(out, "<undefined>\t%s\n", q)
		}
	}
	return nil
}

const (
	replPrompt = ">> "
	printName  = "__repl_print__"
)

// repl evaluates one line at a time, globals and constants survive between lines.
type repl struct {
	out       io.Writer
	modules   *tengo.ModuleMap
	fileSet   *parser.SourceFileSet
	symbols   *tengo.SymbolTable
	globals   []tengo.Object
	constants []tengo.Object
}

func newREPL(modules *tengo.ModuleMap, sample quad.Quad, out io.Writer) (*repl, error) {
	r := &repl{
		out:     out,
		modules: modules,
		fileSet: parser.NewFileSet(),
		symbols: tengo.NewSymbolTable(),
		globals: make([]tengo.Object, tengo.GlobalsSize),
	}
	for idx, fn := range tengo.GetAllBuiltinFunctions() {
		r.symbols.DefineBuiltin(idx, fn.Name)
	}
	r.globals[r.symbols.Define(printName).Index] = &tengo.UserFunction{Name: "print", Value: r.print}

	bound, err := tengo.FromInterface(observation.ToMap(sample))
	if err != nil {
		return nil, errors.WithMessage(err, "can't bind quad")
	}
	r.globals[r.symbols.Define("quad").Index] = bound
	return r, nil
}

func (r *repl) print(args ...tengo.Object) (tengo.Object, error) {
	values := make([]string, 0, len(args))
	for _, arg := range args {
		if _, ok := arg.(*tengo.Undefined); ok {
			values = append(values, "<undefined>")
			continue
		}
		value, _ := tengo.ToString(arg)
		values = append(values, value)
	}
	_, _ = fmt.Fprintln(r.out, strings.Join(values, " "))
	return tengo.UndefinedValue, nil
}

func (r *repl) eval(line string) error {
	srcFile := r.fileSet.AddFile("repl", -1, len(line))
	file, err := parser.NewParser(srcFile, []byte(line), nil).ParseFile()
	if err != nil {
		return err
	}
	c := tengo.NewCompiler(srcFile, r.symbols, r.constants, r.modules, nil)
	if err := c.Compile(echoResults(file)); err != nil {
		return err
	}
	bytecode := c.Bytecode()
	if err := tengo.NewVM(bytecode, r.globals, -1).Run(); err != nil {
		return err
	}
	r.constants = bytecode.Constants
	return nil
}

func (r *repl) run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(r.out, replPrompt)
		if !scanner.Scan() {
			return
		}
		if err := r.eval(scanner.Text()); err != nil {
			_, _ = fmt.Fprintln(r.out, err.Error())
		}
	}
}

// echoResults prints the value of every expression and the targets of every assignment.
func echoResults(file *parser.File) *parser.File {
	printCall := func(args []parser.Expr) parser.Stmt {
		return &parser.ExprStmt{Expr: &parser.CallExpr{Func: &parser.Ident{Name: printName}, Args: args}}
	}
	stmts := make([]parser.Stmt, 0, len(file.Stmts))
	for _, stmt := range file.Stmts {
		switch stmt := stmt.(type) {
		case *parser.ExprStmt:
			stmts = append(stmts, printCall([]parser.Expr{stmt.Expr}))
		case *parser.AssignStmt:
			stmts = append(stmts, stmt, printCall(stmt.LHS))
		default:
			stmts = append(stmts, stmt)
		}
	}
	return &parser.File{InputFile: file.InputFile, Stmts: stmts}
}

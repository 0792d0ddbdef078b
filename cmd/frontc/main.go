package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/frontc/frontc/pkg/cabs"
	"github.com/frontc/frontc/pkg/lexer"
	"github.com/frontc/frontc/pkg/parser"
	"github.com/frontc/frontc/pkg/preproc"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var version = "0.1.0"

// Debug flags for dumping front-end results
var (
	dTokens bool
	dParse  bool
	dSyms   bool
)

// Preprocessor options
var (
	preprocessOnly bool // -E flag
	useExternalPP  bool
	cppCommand     string
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	// Accept compiler-style single-dash debug flags for pflag compatibility
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists the debug flags that accept single-dash spelling
var debugFlagNames = []string{"dtokens", "dparse", "dsyms"}

// normalizeFlags converts single-dash debug flags like -dparse to --dparse
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "frontc [files]",
		Short: "frontc is a C99 front end: lexer, parser and symbol tables",
		Long: `frontc parses C99 translation units into an abstract syntax tree
with fully resolved declarator types and scope-aware symbol tables.
It stops before semantic analysis: the output is the tree, the file
scope, and structured diagnostics.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			if preprocessOnly {
				return doPreprocessOnly(args, out, errOut)
			}
			return checkFiles(args, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().BoolVar(&dTokens, "dtokens", false, "Dump the token stream")
	rootCmd.PersistentFlags().BoolVar(&dParse, "dparse", false, "Dump the AST after parsing")
	rootCmd.PersistentFlags().BoolVar(&dSyms, "dsyms", false, "Dump the file-scope symbol table")
	rootCmd.PersistentFlags().BoolVarP(&preprocessOnly, "preprocess", "E", false, "Preprocess only, output to stdout")
	rootCmd.PersistentFlags().BoolVar(&useExternalPP, "external-cpp", false, "Use the external C preprocessor instead of the builtin shim")
	rootCmd.PersistentFlags().StringVar(&cppCommand, "cpp-command", "", "External preprocessor command (default cc)")

	rootCmd.AddCommand(newWatchCmd(out, errOut))
	return rootCmd
}

func preprocOptions() preproc.Options {
	return preproc.Options{External: useExternalPP, Command: cppCommand}
}

// doPreprocessOnly preprocesses each file and writes the result to stdout
func doPreprocessOnly(files []string, out, errOut io.Writer) error {
	for _, filename := range files {
		content, err := preproc.File(filename, preprocOptions())
		if err != nil {
			fmt.Fprintf(errOut, "frontc: %v\n", err)
			return err
		}
		fmt.Fprint(out, content)
	}
	return nil
}

// checkFiles parses every file, each in its own session. Sessions share
// nothing, so the files parse concurrently; output is buffered per file
// and printed in argument order.
func checkFiles(files []string, out, errOut io.Writer) error {
	bufs := make([]*bytes.Buffer, len(files))
	var g errgroup.Group
	for i, filename := range files {
		i, filename := i, filename
		bufs[i] = &bytes.Buffer{}
		g.Go(func() error {
			return checkFile(filename, bufs[i])
		})
	}
	err := g.Wait()
	for _, buf := range bufs {
		io.Copy(out, buf)
	}
	if err != nil {
		fmt.Fprintf(errOut, "frontc: %v\n", err)
	}
	return err
}

// checkFile preprocesses and parses one file, writing any requested dumps
func checkFile(filename string, out io.Writer) error {
	src, err := preproc.File(filename, preprocOptions())
	if err != nil {
		return err
	}

	p := parser.New(src)
	tu, err := p.ParseTranslationUnit()
	if err != nil {
		return fmt.Errorf("%s:%v", filename, err)
	}

	if dTokens {
		// Re-lex against the finished symbol table so file-scope typedef
		// names classify in the dump.
		if err := dumpTokens(src, p, out); err != nil {
			return fmt.Errorf("%s:%v", filename, err)
		}
	}
	if dParse {
		cabs.NewPrinter(out).PrintTranslationUnit(tu)
	}
	if dSyms {
		dumpSymbols(p, out)
	}
	return nil
}

func dumpTokens(src string, p *parser.Parser, out io.Writer) error {
	lx := lexer.New(src, p.Table())
	for {
		tok, err := lx.NextToken()
		if err != nil {
			return err
		}
		if tok.Type == lexer.TokenEOF {
			return nil
		}
		fmt.Fprintf(out, "%d:%d\t%s\t%q\n", tok.Pos.Line, tok.Pos.Column, tok.Type, tok.Literal)
	}
}

func dumpSymbols(p *parser.Parser, out io.Writer) {
	scope := p.Table().FileScope()
	for _, tag := range scope.Tags() {
		fmt.Fprintf(out, "tag\t%s %s\n", tag.Kind, tag.Name)
	}
	for _, sym := range scope.Ordinary() {
		fmt.Fprintf(out, "%s\t%s: %s\n", sym.Kind, sym.Name, sym.Type)
	}
}

// Package cmd implements the pas32c command line: a single cobra.Command
// rather than a command tree, matching spec.md's `compiler [option]
// source.pas` contract.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pas32/pas32c/internal/ast"
	"github.com/pas32/pas32c/internal/codegen"
	"github.com/pas32/pas32c/internal/config"
	"github.com/pas32/pas32c/internal/errors"
	"github.com/pas32/pas32c/internal/lexer"
	"github.com/pas32/pas32c/internal/parser"
	"github.com/pas32/pas32c/internal/printer"
	"github.com/spf13/cobra"
)

var (
	lexOnly      bool
	printAST     bool
	printSymbols bool
	printBoth    bool
	outputPath   string
	configPath   string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:           "pas32c [flags] source.pas",
	Short:         "Compile a Pascal subset program to 32-bit x86 assembly",
	Long:          `pas32c translates a subset of Pascal into AT&T-syntax 32-bit x86 assembly, assemblable against the C runtime.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          validateArgs,
	FlagErrorFunc: func(c *cobra.Command, err error) error {
		return fmt.Errorf("invalid option")
	},
}

// Execute runs the root command, returning the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.Flags().BoolVarP(&lexOnly, "lex", "l", false, "print the token stream and stop")
	rootCmd.Flags().BoolVarP(&printAST, "ast", "s", false, "print the AST and stop")
	rootCmd.Flags().BoolVarP(&printSymbols, "symbols", "t", false, "print the symbol table and stop")
	rootCmd.Flags().BoolVarP(&printBoth, "both", "b", false, "print the symbol table then the AST, and stop")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "assembly output path (default: source with .s extension)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to an optional TOML configuration file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "render diagnostics with source context and color")

	// A bare invocation (no files, no flags) prints help and exits 0,
	// matching the original main.cpp's no-argument behaviour.
	rootCmd.RunE = func(c *cobra.Command, args []string) error {
		if len(args) == 0 {
			return c.Help()
		}
		return runCompile(c, args)
	}
}

// validateArgs mirrors the original main.cpp's blunt argc check: more than
// one source file (argc > 3 counting the binary and a single flag) is
// always "too many parameters", regardless of which flag was given.
func validateArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("too many parameters")
	}
	return nil
}

func runCompile(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no files specified")
	}
	path := args[0]

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("can't open file")
	}
	src := string(source)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if lexOnly {
		fmt.Print(printer.Tokens(src))
		return nil
	}

	program, err := compile(src, path)
	if err != nil {
		return reportCompilerError(err, src, path)
	}

	switch {
	case printBoth:
		fmt.Print(printer.SymbolTable(program.Scope))
		fmt.Print(printer.AST(program))
		return nil
	case printSymbols:
		fmt.Print(printer.SymbolTable(program.Scope))
		return nil
	case printAST:
		fmt.Print(printer.AST(program))
		return nil
	}

	prog, err := codegen.Generate(program, cfg)
	if err != nil {
		return reportCompilerError(err, src, path)
	}

	dest := outputPath
	if dest == "" {
		dest = strings.TrimSuffix(path, filepath.Ext(path)) + cfg.Output.FileSuffix
	}
	if err := os.WriteFile(dest, []byte(prog.Render(cfg.Output.IndentCommands)), 0o644); err != nil {
		return fmt.Errorf("can't write file")
	}
	return nil
}

// compile runs the scanner-fused parser, the only stage that can fail
// before code generation: lexical and syntactic/semantic errors are both
// surfaced through it, since the parser type-checks inline.
func compile(src, path string) (*ast.Program, error) {
	l := lexer.New(src)
	return parser.ParseProgram(l)
}

func reportCompilerError(err error, src, path string) error {
	ce, ok := err.(*errors.CompilerError)
	if !ok {
		return err
	}
	ce.WithSource(src, path)
	return fmt.Errorf("%s", ce.Format(verbose))
}

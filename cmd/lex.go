package cmd

import (
	"bytes"
	"fmt"
	"io"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/styrainc/jsondoc/pkg/lexer"
)

type lexParams struct {
	strings bool
	numbers bool
	workers int
}

func initLex(r *root) *cobra.Command {
	var p lexParams

	c := &cobra.Command{
		Use:   "lex <file> [<file>...]",
		Short: "Print the token stream of JSON files",
		Long: `Print the tokens the lexer produces for each file, one per line, as

	<line>:<column>	<token>	[<literal>]

Files are scanned concurrently but printed in the order given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			c.SilenceUsage = true
			return p.run(r, c.OutOrStdout(), args)
		},
	}

	c.Flags().BoolVar(&p.strings, "strings", false, "scan string literals into STRING tokens")
	c.Flags().BoolVar(&p.numbers, "numbers", false, "accept signs and exponents in number literals")
	addWorkersFlag(c.Flags(), &p.workers)
	return c
}

func (p *lexParams) options() []lexer.Option {
	var opts []lexer.Option
	if p.strings {
		opts = append(opts, lexer.ScanStrings())
	}
	if p.numbers {
		opts = append(opts, lexer.ExtendedNumbers())
	}
	return opts
}

func (p *lexParams) run(r *root, out io.Writer, files []string) error {
	bufs := make([]bytes.Buffer, len(files))

	workers := pool.New().WithErrors().WithMaxGoroutines(max(p.workers, 1))
	for i, name := range files {
		workers.Go(func() error {
			r.logger.Debug("lexing %s", name)
			return lexFile(&bufs[i], name, p.options())
		})
	}
	err := workers.Wait()

	for i := range bufs {
		if len(files) > 1 {
			fmt.Fprintf(out, "==> %s <==\n", files[i])
		}
		if _, werr := bufs[i].WriteTo(out); werr != nil {
			return werr
		}
	}
	return err
}

func lexFile(w io.Writer, name string, opts []lexer.Option) error {
	l, err := lexer.NewFromFile(name, opts...)
	if err != nil {
		return err
	}
	defer l.Close()

	for {
		tok := l.Next()
		pos := l.Position()
		if tok != lexer.EOF && tok.Literal() {
			fmt.Fprintf(w, "%v\t%v\t%q\n", pos, tok, l.Literal())
		} else {
			fmt.Fprintf(w, "%v\t%v\n", pos, tok)
		}
		if tok == lexer.EOF {
			return nil
		}
	}
}

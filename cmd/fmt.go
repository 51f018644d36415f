package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/open-policy-agent/opa/util"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/styrainc/jsondoc/pkg/json"
	"github.com/styrainc/jsondoc/pkg/parser"
)

type fmtParams struct {
	compact      bool
	sortKeys     bool
	rawStrings   bool
	numberFormat string
	inputFormat  *util.EnumFlag
	output       *util.EnumFlag
	maxDepth     int
	workers      int
	check        bool
}

func initFmt(r *root) *cobra.Command {
	p := fmtParams{
		inputFormat: util.NewEnumFlag("json", []string{"json", "yaml"}),
		output:      util.NewEnumFlag("json", []string{"json", "rego"}),
	}

	c := &cobra.Command{
		Use:   "fmt [<file>...]",
		Short: "Parse and re-render JSON documents",
		Long: `Parse each file and print it back in canonical form. With no files, or
with "-", the document is read from standard input.

With --output=rego the document is printed as a Rego term instead. With
--check nothing is rendered; the names of files whose content differs from
the rendered form are listed and the command exits with status 2.`,
		RunE: func(c *cobra.Command, args []string) error {
			c.SilenceUsage = true
			opts, err := p.renderOptions(c, r.config.Render)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"-"}
			}
			err = p.run(r, c.InOrStdin(), c.OutOrStdout(), args, opts)
			var exit *ExitError
			if errors.As(err, &exit) {
				// the file list is the report
				c.SilenceErrors = true
			}
			return err
		},
	}

	c.Flags().BoolVar(&p.compact, "compact", false, "omit indentation and newlines")
	c.Flags().BoolVar(&p.sortKeys, "sort-keys", false, "print object members in key order")
	c.Flags().BoolVar(&p.rawStrings, "raw-strings", false, "do not escape string content")
	c.Flags().StringVar(&p.numberFormat, "number-format", "fixed", "number rendering: fixed or shortest")
	c.Flags().Var(p.inputFormat, "input-format", "set input format")
	c.Flags().VarP(p.output, "output", "o", "set output format")
	c.Flags().IntVar(&p.maxDepth, "max-depth", parser.DefaultMaxDepth, "deepest container nesting accepted")
	c.Flags().BoolVar(&p.check, "check", false, "list files that are not formatted instead of printing them")
	addWorkersFlag(c.Flags(), &p.workers)
	return c
}

// renderOptions starts from the config file and applies the flags that were
// set explicitly.
func (p *fmtParams) renderOptions(c *cobra.Command, cfg RenderConfig) (json.RenderOptions, error) {
	flags := c.Flags()
	if flags.Changed("compact") {
		cfg.Compact = p.compact
	}
	if flags.Changed("sort-keys") {
		cfg.SortKeys = p.sortKeys
	}
	if flags.Changed("raw-strings") {
		cfg.RawStrings = p.rawStrings
	}
	if flags.Changed("number-format") {
		cfg.NumberFormat = p.numberFormat
	}
	if _, err := json.ParseNumberFormat(cfg.NumberFormat); err != nil {
		return json.RenderOptions{}, err
	}
	return cfg.options(), nil
}

func (p *fmtParams) run(r *root, stdin io.Reader, out io.Writer, files []string, opts json.RenderOptions) error {
	results := make([]string, len(files))
	unchanged := make([]bool, len(files))

	var g errgroup.Group
	g.SetLimit(max(p.workers, 1))
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			bs, err := readInput(stdin, name)
			if err != nil {
				return err
			}
			s, err := p.format(r, name, bs, opts)
			if err != nil {
				return err
			}
			results[i] = s
			unchanged[i] = strings.TrimRight(string(bs), "\r\n") == s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if p.check {
		return reportUnformatted(out, files, unchanged)
	}

	for _, s := range results {
		if _, err := fmt.Fprintln(out, s); err != nil {
			return err
		}
	}
	return nil
}

func reportUnformatted(out io.Writer, files []string, unchanged []bool) error {
	var dirty bool
	for i, name := range files {
		if !unchanged[i] {
			dirty = true
			fmt.Fprintln(out, name)
		}
	}
	if dirty {
		return &ExitError{Exit: 2}
	}
	return nil
}

func (p *fmtParams) format(r *root, name string, bs []byte, opts json.RenderOptions) (string, error) {
	if p.inputFormat.String() == "yaml" {
		var err error
		bs, err = yaml.YAMLToJSON(bs)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
	}

	v, err := parser.ParseBytes(bs, parser.MaxDepth(p.maxDepth), parser.Logger(r.logger))
	if err != nil {
		return "", fmt.Errorf("%s:%w", name, err)
	}
	defer json.Unref(v)

	r.logger.WithFields(map[string]interface{}{"file": name, "kind": v.Kind().String()}).Debug("parsed document")

	if p.output.String() == "rego" {
		return json.AST(v).String(), nil
	}
	return strings.TrimRight(json.RenderOptionsString(v, 0, opts), "\n"), nil
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

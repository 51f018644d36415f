package cmd

import (
	"fmt"
	"io"

	"github.com/open-policy-agent/opa/logging"
	"github.com/spf13/cobra"

	"github.com/styrainc/jsondoc/pkg/json"
	"github.com/styrainc/jsondoc/pkg/parser"
)

func initStats(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file> [<file>...]",
		Short: "Summarize the structure of JSON documents",
		Long: `Print, per file, the number of values of each kind, the deepest nesting
and the path that reaches it, and the structural hash of the document.

At debug log level the hash table layout of every object is logged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			c.SilenceUsage = true
			for _, name := range args {
				if err := statsFile(r.logger, c.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func statsFile(logger logging.Logger, out io.Writer, name string) error {
	v, err := parser.ParseFile(name, parser.Logger(logger))
	if err != nil {
		return fmt.Errorf("%s:%w", name, err)
	}
	defer json.Unref(v)

	s := &statsWalker{logger: logger, counts: map[json.Kind]int{}}
	json.Walk(v, s)

	kinds := json.NewObject()
	for k, n := range s.counts {
		kinds.Set(k.String(), json.NewNumber(float64(n)))
	}

	summary := json.NewObject()
	defer json.Unref(summary)
	summary.Set("file", json.NewString(name))
	summary.Set("kinds", kinds)
	summary.Set("max_depth", json.NewNumber(float64(s.maxDepth)))
	summary.Set("deepest_path", json.NewString(s.deepest))
	summary.Set("hash", json.Newf("%016x", json.Hash(v)))

	_, err = fmt.Fprintln(out, json.RenderOptionsString(summary, 0, json.RenderOptions{
		SortKeys:     true,
		NumberFormat: json.NumberShortest,
	}))
	return err
}

type statsWalker struct {
	logger   logging.Logger
	counts   map[json.Kind]int
	maxDepth int
	deepest  string
}

func (s *statsWalker) visit(w *json.WalkState, k json.Kind) {
	s.counts[k]++
	if d := w.Depth(); d > s.maxDepth {
		s.maxDepth = d
		s.deepest = w.Path()
	}
}

func (s *statsWalker) StartArray(w *json.WalkState, _ *json.Array) { s.visit(w, json.KindArray) }
func (*statsWalker) EndArray(*json.WalkState, *json.Array)         {}
func (s *statsWalker) Boolean(w *json.WalkState, _ *json.Boolean)  { s.visit(w, json.KindBoolean) }
func (s *statsWalker) Null(w *json.WalkState)                      { s.visit(w, json.KindNull) }
func (s *statsWalker) Number(w *json.WalkState, _ *json.Number)    { s.visit(w, json.KindNumber) }
func (s *statsWalker) String(w *json.WalkState, _ *json.String)    { s.visit(w, json.KindString) }
func (*statsWalker) EndObject(*json.WalkState, *json.Object)       {}

func (s *statsWalker) StartObject(w *json.WalkState, o *json.Object) {
	s.visit(w, json.KindObject)
	if s.logger.GetLevel() >= logging.Debug {
		o.DebugHash(s.logger.WithFields(map[string]interface{}{"path": w.Path()}))
	}
}

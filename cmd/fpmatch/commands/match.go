package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/npillmayer/fpmatch"
	"github.com/npillmayer/fpmatch/pattern"
)

type matchOptions struct {
	cases   string
	value   string
	input   string
	explain bool
	tree    bool
}

func newMatchCommand() *cobra.Command {
	opts := &matchOptions{}
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a value against a case table",
		Long: `Match a value against the cases of a YAML case table and print the
result as YAML.

The value is given as YAML (or JSON) with --value, or read from a file with
--input. If no case matches, the diagnostic is printed and the command fails.

Examples:
  fpmatch match -c palindrome.yaml -v '[1, 2, 3, 2, 1]'
  fpmatch match -c ip.yaml -i address.yaml --tree`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.cases, "cases", "c", "", "Path to the YAML case table")
	cmd.Flags().StringVarP(&opts.value, "value", "v", "", "Value to match, as YAML")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Path to a YAML file holding the value")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Print the compiled pattern of every case")
	cmd.Flags().BoolVar(&opts.tree, "tree", false, "Print the diagnostic as a tree if no case matches")
	_ = cmd.MarkFlagRequired("cases")
	return cmd
}

func runMatch(out, errout io.Writer, opts *matchOptions) error {
	src, err := os.ReadFile(opts.cases)
	if err != nil {
		return errors.Wrap(err, "cannot read case table")
	}
	table, err := ParseTable(src)
	if err != nil {
		return err
	}
	m, err := table.Matcher()
	if err != nil {
		return err
	}
	if opts.explain {
		if err := explain(out, m); err != nil {
			return err
		}
	}
	v, err := readValue(opts)
	if err != nil {
		return err
	}
	res, err := m.Match(v)
	if err != nil {
		var nm *fpmatch.NoMatchError
		if opts.tree && errors.As(err, &nm) {
			fmt.Fprint(errout, nm.Diagnostic.Tree())
		}
		return err
	}
	y, err := yaml.Marshal(res)
	if err != nil {
		return errors.Wrap(err, "cannot print result")
	}
	_, err = out.Write(y)
	return err
}

func readValue(opts *matchOptions) (any, error) {
	src := []byte(opts.value)
	if opts.input != "" {
		if opts.value != "" {
			return nil, errors.New("flags --value and --input are mutually exclusive")
		}
		var err error
		if src, err = os.ReadFile(opts.input); err != nil {
			return nil, errors.Wrap(err, "cannot read value")
		}
	}
	var v any
	if err := yaml.Unmarshal(src, &v); err != nil {
		return nil, errors.Wrap(err, "cannot parse value")
	}
	return v, nil
}

func explain(out io.Writer, m *fpmatch.Matcher) error {
	ps, err := m.Patterns()
	if err != nil {
		return err
	}
	for i, p := range ps {
		if p == nil {
			fmt.Fprintf(out, "case %d: default\n", i+1)
			continue
		}
		fmt.Fprintf(out, "case %d:\n%s", i+1, pattern.Dump(p))
	}
	return nil
}

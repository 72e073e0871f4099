package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	_join "hive/pkg/join"
	"hive/pkg/quad"
	"hive/pkg/window"
)

// joinFlags describes an offline join of two n-quads files, facts are timestamped
// by their object literal.
type joinFlags struct {
	strategy               string
	left, right            string
	leftWidth, leftSlide   int64
	rightWidth, rightSlide int64
	t0                     int64
	granularity            string
	resultSize             int64
	resultSlide            int64
}

func init() {
	flags := joinFlags{}
	cmd := &cobra.Command{
		Use:   "join [left.nq] [right.nq]",
		Short: "join two n-quads files offline.",
		Long:  `buffer two n-quads files, timestamped by object literal, in sliding windows and print the joined windows.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.left, flags.right = args[0], args[1]
			return runJoin(flags, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&flags.strategy, "strategy", "merge", "join strategy")
	cmd.Flags().Int64Var(&flags.leftWidth, "left-width", 10, "left window width")
	cmd.Flags().Int64Var(&flags.leftSlide, "left-slide", 5, "left window slide")
	cmd.Flags().Int64Var(&flags.rightWidth, "right-width", 10, "right window width")
	cmd.Flags().Int64Var(&flags.rightSlide, "right-slide", 5, "right window slide")
	cmd.Flags().Int64Var(&flags.t0, "t0", 0, "window origin")
	cmd.Flags().StringVar(&flags.granularity, "granularity", string(_join.WidthOnly), "chunk grid alignment")
	cmd.Flags().Int64Var(&flags.resultSize, "result-size", 0, "temporal strategy result window size")
	cmd.Flags().Int64Var(&flags.resultSlide, "result-slide", 0, "temporal strategy result window slide")
	Command.AddCommand(cmd)
}

func loadWindow(name string, r io.Reader, width, slide, t0 int64) (*window.CSPARQL, error) {
	w, err := window.NewCSPARQL(name, width, slide, t0, window.WithManualEviction())
	if err != nil {
		return nil, err
	}
	quads, err := quad.ParseAll(r)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	timestamps := make(map[quad.Quad]int64, len(quads))
	for i, q := range quads {
		ts, ok := _join.ObjectLiteral.Timestamp(q)
		if !ok {
			return nil, errors.Errorf("%s statement %d: object is not a timestamp", name, i+1)
		}
		timestamps[q] = int64(ts)
	}
	// files need not be ordered, the window only accepts a bounded delay
	sort.SliceStable(quads, func(i, j int) bool {
		return timestamps[quads[i]] < timestamps[quads[j]]
	})
	for _, q := range quads {
		w.Add(q, timestamps[q])
	}
	return w, nil
}

func openWindow(path string, width, slide, t0 int64) (*window.CSPARQL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()
	return loadWindow(path, f, width, slide, t0)
}

func runJoin(flags joinFlags, out io.Writer) error {
	granularity, err := _join.ParseGranularity(flags.granularity)
	if err != nil {
		return err
	}
	joiner, err := _join.New(flags.strategy, _join.Config{
		T0:          flags.t0,
		Granularity: granularity,
		ResultSize:  flags.resultSize,
		ResultSlide: flags.resultSlide,
	})
	if err != nil {
		return err
	}
	left, err := openWindow(flags.left, flags.leftWidth, flags.leftSlide, flags.t0)
	if err != nil {
		return err
	}
	right, err := openWindow(flags.right, flags.rightWidth, flags.rightSlide, flags.t0)
	if err != nil {
		return err
	}
	results, err := joiner.Join(left.Snapshot(), right.Snapshot())
	if err != nil {
		return err
	}
	renderResults(out, results)
	return nil
}

func renderResults(out io.Writer, results []_join.Result) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Open", "Close", "Facts", "Fact"})
	table.SetAutoWrapText(false)
	table.SetAutoMergeCells(true)
	for _, result := range results {
		open, closed := strconv.FormatInt(result.Window.Open, 10), strconv.FormatInt(result.Window.Close, 10)
		size := strconv.Itoa(result.Facts.Len())
		for _, q := range result.Facts.Quads() {
			table.Append([]string{open, closed, size, q.String()})
		}
	}
	table.SetFooter([]string{"", "", "windows", fmt.Sprint(len(results))})
	table.Render()
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopmap/itermap/internal/ir"
	"github.com/loopmap/itermap/internal/itermap"
)

var divideCmd = &cobra.Command{
	Use:   "divide",
	Short: "Split index expressions into outer and inner subspaces",
	Run:   runDivide,
}

func init() {
	divideCmd.Flags().StringSlice("var", nil, "variable declaration name:min:extent (repeatable)")
	divideCmd.Flags().StringSlice("index", nil, "index expression (repeatable, in output order)")
	divideCmd.Flags().StringSlice("inner", nil, "name of a variable belonging to the inner subspace (repeatable)")
}

func runDivide(cmd *cobra.Command, args []string) {
	specs, err := parseVarSpecs(getStringSlice(cmd, "var"))
	if err != nil {
		fmt.Println(err)
		return
	}
	vars, ranges := buildVars(specs)

	inner := make(map[string]bool)
	for _, name := range getStringSlice(cmd, "inner") {
		inner[name] = true
	}
	isInner := func(v *ir.Var) bool { return inner[v.Name] }

	indexStrs := getStringSlice(cmd, "index")
	indices := make([]ir.Expr, 0, len(indexStrs))
	for _, s := range indexStrs {
		e, err := parseExpr(s, vars)
		if err != nil {
			fmt.Println(err)
			return
		}
		indices = append(indices, e)
	}

	sess := itermap.NewSession(logger)
	analyzer := ir.NewDefaultAnalyzer()

	sums, ok := itermap.DetectIterMap(indices, ranges, nil, true, analyzer, sess)
	if !ok {
		for _, d := range sess.Diagnostics() {
			dumpLine(d.String())
		}
		return
	}

	results, outerPreds, innerPreds, ok := itermap.SubspaceDivide(sums, isInner, sess)
	if !ok {
		for _, d := range sess.Diagnostics() {
			dumpLine(d.String())
		}
		return
	}

	for i, dr := range results {
		dumpLine(fmt.Sprintf("index %d: outer=%s (extent %d) inner=%s (extent %d)", i, dr.Outer, dr.OuterExtent, dr.Inner, dr.InnerExtent))
	}
	for i, p := range outerPreds {
		dumpLine(fmt.Sprintf("outer predicate %d: %s", i, p))
	}
	for i, p := range innerPreds {
		dumpLine(fmt.Sprintf("inner predicate %d: %s", i, p))
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopmap/itermap/internal/ir"
	"github.com/loopmap/itermap/internal/itermap"
)

var inverseCmd = &cobra.Command{
	Use:   "inverse",
	Short: "Recover each loop variable's value from a set of output expressions",
	Run:   runInverse,
}

func init() {
	inverseCmd.Flags().StringSlice("var", nil, "variable declaration name:min:extent (repeatable)")
	inverseCmd.Flags().StringSlice("index", nil, "index expression, in output order (repeatable)")
	inverseCmd.Flags().StringSlice("output", nil, "output expression naming the recovered flat coordinates, e.g. t0 (repeatable, same order as --index)")
}

func runInverse(cmd *cobra.Command, args []string) {
	specs, err := parseVarSpecs(getStringSlice(cmd, "var"))
	if err != nil {
		fmt.Println(err)
		return
	}
	vars, ranges := buildVars(specs)

	outputStrs := getStringSlice(cmd, "output")
	for _, s := range outputStrs {
		if _, ok := vars[s]; !ok {
			vars[s] = ir.NewVar(s)
		}
	}

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

	outputs := make([]ir.Expr, 0, len(outputStrs))
	for _, s := range outputStrs {
		e, err := parseExpr(s, vars)
		if err != nil {
			fmt.Println(err)
			return
		}
		outputs = append(outputs, e)
	}

	bijective := getFlag(cmd, "bijective")
	sess := itermap.NewSession(logger)
	analyzer := ir.NewDefaultAnalyzer()

	sums, ok := itermap.DetectIterMap(indices, ranges, nil, bijective, analyzer, sess)
	if !ok {
		for _, d := range sess.Diagnostics() {
			dumpLine(d.String())
		}
		return
	}

	inv, ok := itermap.InverseAffineIterMap(sums, outputs, sess)
	if !ok {
		for _, d := range sess.Diagnostics() {
			dumpLine(d.String())
		}
		return
	}

	for _, spec := range specs {
		v := vars[spec.Name]
		e, ok := inv[v]
		if !ok {
			dumpLine(fmt.Sprintf("%s: not recovered", spec.Name))
			continue
		}
		dumpLine(fmt.Sprintf("%s = %s", spec.Name, e))
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopmap/itermap/internal/ir"
	"github.com/loopmap/itermap/internal/itermap"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Report the affine iteration map for a set of index expressions",
	Run:   runDetect,
}

func init() {
	detectCmd.Flags().StringSlice("var", nil, "variable declaration name:min:extent (repeatable)")
	detectCmd.Flags().StringSlice("index", nil, "index expression (repeatable, in output order)")
	detectCmd.Flags().String("predicate", "", "accepted but not applied: detect always runs over the full declared ranges, with no predicate")
}

func runDetect(cmd *cobra.Command, args []string) {
	specs, err := parseVarSpecs(getStringSlice(cmd, "var"))
	if err != nil {
		fmt.Println(err)
		return
	}
	vars, ranges := buildVars(specs)

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

	for i, s := range sums {
		dumpLine(fmt.Sprintf("index %d: %s", i, s))
	}
}

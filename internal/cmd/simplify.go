package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopmap/itermap/internal/ir"
	"github.com/loopmap/itermap/internal/itermap"
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify",
	Short: "Normalize index expressions, falling back to the originals when no affine map is found",
	Run:   runSimplify,
}

func init() {
	simplifyCmd.Flags().StringSlice("var", nil, "variable declaration name:min:extent (repeatable)")
	simplifyCmd.Flags().StringSlice("index", nil, "index expression (repeatable, in output order)")
}

func runSimplify(cmd *cobra.Command, args []string) {
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
	analyzer := ir.NewDefaultAnalyzer()

	out := itermap.IterMapSimplify(indices, ranges, nil, bijective, analyzer)
	for i, e := range out {
		dumpLine(fmt.Sprintf("index %d: %s", i, e))
	}
}

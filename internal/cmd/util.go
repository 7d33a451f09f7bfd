package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/loopmap/itermap/internal/ir"
)

// getFlag reads a required bool flag, or exits the process on error — the
// same "an expected flag is a programmer error, not a user error" contract
// pkg/cmd/util.go's getFlag follows.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

func getStringSlice(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringSlice(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

// varSpec is one "name:min:extent" entry of the --var flag.
type varSpec struct {
	Name       string
	Min, Extent int64
}

func parseVarSpecs(specs []string) ([]varSpec, error) {
	out := make([]varSpec, 0, len(specs))
	for _, s := range specs {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("--var expects name:min:extent, got %q", s)
		}
		var min, extent int64
		if _, err := fmt.Sscanf(parts[1], "%d", &min); err != nil {
			return nil, fmt.Errorf("bad min in %q: %w", s, err)
		}
		if _, err := fmt.Sscanf(parts[2], "%d", &extent); err != nil {
			return nil, fmt.Errorf("bad extent in %q: %w", s, err)
		}
		out = append(out, varSpec{Name: parts[0], Min: min, Extent: extent})
	}
	return out, nil
}

// buildVars registers one ir.Var and an ir.Interval per varSpec, returning
// the name-to-variable lookup table the expression parser needs.
func buildVars(specs []varSpec) (map[string]*ir.Var, map[*ir.Var]ir.Interval) {
	vars := make(map[string]*ir.Var, len(specs))
	ranges := make(map[*ir.Var]ir.Interval, len(specs))
	for _, s := range specs {
		v := ir.NewVar(s.Name)
		vars[s.Name] = v
		ranges[v] = ir.Interval{Min: s.Min, Extent: s.Extent}
	}
	return vars, ranges
}

// dumpLine prints s to stdout, wrapped to the terminal width when stdout is
// a real terminal, or as a single unwrapped line when it is not (so
// piping the output to another tool never sees the dump broken up).
func dumpLine(s string) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		fmt.Println(s)
		return
	}

	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		fmt.Println(s)
		return
	}

	for len(s) > width {
		fmt.Println(s[:width])
		s = s[width:]
	}
	fmt.Println(s)
}

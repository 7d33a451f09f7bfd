package cmd

import (
	env "github.com/xyproto/env/v2"
)

// defaultBijective and defaultVerbose seed the persistent flags from the
// environment before pflag parses the command line, so a CI pipeline can
// fix them once via the environment instead of repeating flags on every
// invocation.
var (
	defaultBijective = boolEnv("ITERMAP_BIJECTIVE", true)
	defaultVerbose   = boolEnv("ITERMAP_VERBOSE", false)
)

// boolEnv returns the bool value of the given environment variable, or def
// if the variable is not set.
func boolEnv(name string, def bool) bool {
	if !env.Has(name) {
		return def
	}
	return env.Bool(name)
}

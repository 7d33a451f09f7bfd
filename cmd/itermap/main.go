package main

import (
	"github.com/loopmap/itermap/internal/cmd"
)

func main() {
	cmd.Execute()
}

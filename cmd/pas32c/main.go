// Command pas32c compiles a subset of Pascal to 32-bit x86 assembly.
package main

import (
	"os"

	"github.com/pas32/pas32c/cmd/pas32c/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

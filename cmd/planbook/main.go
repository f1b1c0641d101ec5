// Command planbook is a planning notebook for days, weeks, months and years.
package main

import (
	"os"

	"github.com/mesh-intelligence/planbook/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

// protochain lists property names along object prototype chains described
// in YAML graph files.
package main

import (
	"os"

	"github.com/hupe1980/protochain/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

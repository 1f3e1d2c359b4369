package main

import (
	"os"

	"github.com/vitwit/stablepay/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}

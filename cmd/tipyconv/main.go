package main

import (
	"github.com/calctools/tipyconv/cmd/tipyconv/cmd"
)

func main() {
	cmd.Execute()
}

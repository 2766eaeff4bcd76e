package main

import (
	"os"

	"github.com/sanchis/localit/coremain"
)

func main() {
	if err := coremain.Run(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"os"

	"github.com/styrainc/jsondoc/cmd"
	"github.com/styrainc/jsondoc/pkg/json"
)

func main() {
	// run all deferred functions before os.Exit
	var exit int
	defer func() {
		if exit != 0 {
			os.Exit(exit)
		}
	}() // orderly shutdown, run all defer routines
	defer json.Shutdown()

	if err := cmd.JSONDocCommand().Execute(); err != nil {
		var e *cmd.ExitError
		if errors.As(err, &e) {
			exit = e.Exit
		} else {
			exit = 1
		}
		return
	}
}

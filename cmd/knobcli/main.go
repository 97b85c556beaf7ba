package main

import (
	"github.com/robotalks/knobbridge/pkg/cli/sh"

	_ "github.com/robotalks/knobbridge/pkg/cli/cmds/knob"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}

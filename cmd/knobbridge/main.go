package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/robotalks/knobbridge/pkg/bridge"
	"github.com/robotalks/knobbridge/pkg/framework"
)

func init() {
	bridge.SetupFlags()
}

func main() {
	flag.Parse()

	conf, err := bridge.Load()
	if err != nil {
		log.Fatalln(err)
	}
	b := conf.MustNewBridge()
	framework.NewLoop().Add(b).RunOrFail(b)
}

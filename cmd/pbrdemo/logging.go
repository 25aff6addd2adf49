package main

import (
	"github.com/urfave/cli"

	"pbr-engine/log"
)

var logger = log.New("pbrdemo")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

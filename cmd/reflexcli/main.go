package main

//go-build: CGO_ENABLED=0

import (
	"github.com/microbots/reflex.go/pkg/cli/sh"
	"github.com/microbots/reflex.go/pkg/l1/env"
)

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}

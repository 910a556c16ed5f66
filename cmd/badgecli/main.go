package main

import (
	"github.com/nsec/badge.go/pkg/cli/sh"
	"github.com/nsec/badge.go/pkg/env"
	"github.com/nsec/badge.go/pkg/network"
	"github.com/nsec/badge.go/pkg/sim"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
	network.SetupFlags()
	sim.SetupFlags()
}

func main() {
	sh.Main()
}

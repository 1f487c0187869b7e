// Package main is the entry point for the IWAC chat service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/iwac-chat/cmd/iwac-chat/app"
)

func main() {
	app.NewApp().Run()
}

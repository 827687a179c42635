package main

import (
	"github.com/wgomg/aura/internal/cli"
	"github.com/wgomg/aura/internal/utils"
)

func main() {
	if err := cli.Execute(); err != nil {
		logger := utils.NewLogger(string(utils.LevelError), false)
		logger.Fatal("aura: ", err)
	}
}

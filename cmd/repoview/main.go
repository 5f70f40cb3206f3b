package main

import (
	"log"
	"os"

	"github.com/xy-planning-network/repoview/ranger"
)

func main() {
	rng, err := ranger.New()
	if err != nil {
		log.Fatal(err)
	}

	if err := rng.Guide(); err != nil {
		rng.EmitLogger().Fatal(err.Error(), nil)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/plex-projectplanner/projectplanner/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

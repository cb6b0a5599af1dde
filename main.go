package main

import (
	"log"

	"github.com/RizzZzz09/steam-screenshot-rebinder/gui"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	app := gui.NewApp()
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}

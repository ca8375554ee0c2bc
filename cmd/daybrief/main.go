package main

import (
	"os"

	"horse.fit/daybrief/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}

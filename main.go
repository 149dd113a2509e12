package main

import (
	"os"

	"github.com/JereGun/realtor-internal-hub-main-sub002/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

package main

import (
	"log"

	"github.com/dkhodos/postshare/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalln("failed to initialize the application:", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		log.Fatalln("application stopped with error:", err)
	}
}

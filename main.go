package main

import (
	"flag"

	"fritter/auth"
	"fritter/crud"
	"fritter/http"
	"fritter/storage"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a config file is provided before the application starts.")
	flag.Parse()

	// Load configuration from defaults, an optional config.yaml, and env vars.
	config := LoadConfig(*productionBool)

	// Set up the single in-memory store all services share.
	db := storage.NewStore()

	// Start the crud services.
	services, err := crud.NewServices(
		db,
		crud.WithUser(config.Pepper),
		crud.WithFreet(),
	)
	must(err)

	// Set up the session table and the webserver.
	sessions := auth.NewSessionManager()
	server := http.NewServer(config.IsProd(), config.CSRFKey, services, sessions)

	// Serve the app.
	server.Run(config.Port)
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

package main

import (
	"flag"
	"time"

	"wtfBlog/crud"
	"wtfBlog/domain"
	"wtfBlog/http"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a .config.json file is provided before the application starts.")
	flag.Parse()

	// Load configuration from a .config.json file if present, otherwise
	// use the default dev setup. In production the file is required and
	// the app will panic if no file is found.
	config := LoadConfig(*productionBool)

	// Open a database connection and execute migrations.
	db := NewDB(config.Database.ConnectionInfo())
	err := Open(db, config.IsProd())
	must(err)
	defer Close(db)
	err = AutoMigrate(db)
	must(err)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper, config.HMACKey),
		crud.WithGroup(),
		crud.WithPost(),
		crud.WithComment(),
		crud.WithFollow(),
		crud.WithImage(domain.ImagesBaseDir),
	)
	must(err)

	// Set up a webserver.
	cacheTTL := time.Duration(config.CacheTTLSeconds) * time.Second
	server := http.NewServer(config.IsProd(), config.CSRFKey, cacheTTL, services)

	// Serve the app.
	server.Run(config.Port)
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/technest/technest-api/cmd/app"
)

// @termsOfService  http://swagger.io/terms/
// @contact.name   TechNest API Support
// @contact.email  contato@technest.app
//
// @license.name  MIT
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}

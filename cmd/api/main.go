// Package main is the entry point of the API server.
package main

import (
	"log"

	"JobQuest-backend/internal/server"
)

// @title JobQuest API
// @version 1.0
// @description REST backend for the JobQuest job board.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @BasePath /api/v1
func main() {
	srv := server.NewServer()

	log.Printf("Listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Cannot start server: %s", err)
	}
}

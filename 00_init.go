package main

import (
	"log"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env before the port and config lookups read the environment
	if err := godotenv.Load(); err != nil {
		log.Printf("[Config] No .env file loaded: %v", err)
	}
}

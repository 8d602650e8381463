package main

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain loads .env if present so integration runs pick up credentials
func TestMain(m *testing.M) {
	_ = godotenv.Load()
	os.Exit(m.Run())
}

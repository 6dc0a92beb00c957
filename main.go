/*
Copyright © 2025 tieubaoca
*/
package main

import (
	"github.com/joho/godotenv"
	"github.com/tieubaoca/pitchdeck-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	// .env is optional; real environment variables still apply.
	_ = godotenv.Load()
}

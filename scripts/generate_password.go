package main

import (
	"flag"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
)

// Prints an ADMIN_PASSWORD_HASH line for the bootstrap admin seeded by cmd/api.
func main() {
	cost := flag.Int("cost", 12, "bcrypt cost, must match BCRYPT_COST")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("Usage: go run scripts/generate_password.go [-cost 12] <password>")
	}
	password := flag.Arg(0)
	if len(password) < 8 {
		log.Fatal("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), *cost)
	if err != nil {
		log.Fatal("Error generating hash:", err)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		log.Fatal("Hash verification failed:", err)
	}

	fmt.Printf("ADMIN_PASSWORD_HASH='%s'\n", hash)
}

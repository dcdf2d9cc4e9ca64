// Command hashpass prints a SUPERVISOR_ACCOUNTS entry for one supervisor.
//
//	go run ./cmd/hashpass -email jefe@example.com -password secreto
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "", "supervisor email")
	password := flag.String("password", "", "plain-text password")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	entry, err := accountEntry(*email, *password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Println(entry)
}

// accountEntry returns "email:bcrypt-hash" in the form config.parseSupervisors reads
func accountEntry(email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(email)) + ":" + string(hash), nil
}

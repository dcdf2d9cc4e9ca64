package main

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestAccountEntry(t *testing.T) {
	entry, err := accountEntry(" Jefe@Example.com ", "secreto")
	if err != nil {
		t.Fatal(err)
	}
	email, hash, ok := strings.Cut(entry, ":")
	if !ok || email != "jefe@example.com" {
		t.Fatalf("unexpected entry %q", entry)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("secreto")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}

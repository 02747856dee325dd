package user

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestCheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatal(err)
	}
	u := &User{PasswordHash: string(hash)}

	if !CheckPassword(u, "correct horse") {
		t.Error("correct password rejected")
	}
	if CheckPassword(u, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestCheckPassword_OAuthAccountNeverMatches(t *testing.T) {
	u := &User{PasswordHash: ""}
	if CheckPassword(u, "") {
		t.Error("empty password matched empty hash")
	}
	if CheckPassword(u, "anything") {
		t.Error("password matched account with no hash")
	}
}

package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User guards the web front end. Credentials come from the
// environment at startup; the engine itself has no notion of users.
type User struct {
	Id       string
	Name     string
	Password []byte
}

func NewUser(name, password string) *User {
	// password max size is 72 bytes because of bcrypt limit
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return &User{uuid.New().String(), name, hashed}
}

func (u *User) Validate(name, password string) bool {
	return u.Name == name &&
		bcrypt.CompareHashAndPassword(u.Password, []byte(password)) == nil
}

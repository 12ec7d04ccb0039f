package server

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPassword(t *testing.T) {
	assert.True(t, isValidPassword("Admin@123"))
	assert.False(t, isValidPassword("Ad@1"), "too short")
	assert.False(t, isValidPassword("admin@123"), "no upper case letter")
	assert.False(t, isValidPassword("ADMIN@123"), "no lower case letter")
	assert.False(t, isValidPassword("Admin@abc"), "no digit")
	assert.False(t, isValidPassword("Admin1234"), "no symbol")
	assert.False(t, isValidPassword("Admin @123"), "contains whitespace")
}

func TestIsValidPhoneNumber(t *testing.T) {
	for _, phone := range []string{"555-0100", "+1 (416) 555-0100", "416.555.0100", "555 0100 ext. 12"} {
		assert.True(t, isValidPhoneNumber(phone), phone)
	}

	for _, phone := range []string{"", "call me", "+", "12a34"} {
		assert.False(t, isValidPhoneNumber(phone), phone)
	}
}

func TestUniqueViolationMessage(t *testing.T) {
	assert.Equal(t, "Email is already taken",
		uniqueViolationMessage(errors.New("UNIQUE constraint failed: users.email")))
	assert.Equal(t, "Email is already taken",
		uniqueViolationMessage(errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`)))
	assert.Equal(t, "", uniqueViolationMessage(errors.New("database is locked")))
}

func TestHumanizeText(t *testing.T) {
	assert.Equal(t, "Street Address", humanizeText("street_address"))
}

package utils

import "github.com/google/uuid"

func GenerateID() string {
	return uuid.NewString()
}

// IsValidID reports whether s is a canonical UUID string.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

package tool

import "github.com/google/uuid"

// GenerateUUIDV7 returns a time-ordered id used as primary key for every row.
func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsUUID reports whether s parses as a uuid; path parameters are checked with it.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

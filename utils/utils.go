package utils

import (
	"os"
	"strings"
)

func FileExist(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}

func CreateDirIfNotExist(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}

	return nil
}

// ValueAt returns values[i] or fallback when i is out of range.
func ValueAt(values []string, i int, fallback string) string {
	if i < len(values) {
		return values[i]
	}
	return fallback
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

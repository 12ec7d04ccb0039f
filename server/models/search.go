package models

import (
	"strings"

	"gorm.io/gorm"
)

const matchQuery = `(LOWER(contacts.first_name) LIKE LOWER(@pattern) ESCAPE '\'
	OR LOWER(contacts.last_name) LIKE LOWER(@pattern) ESCAPE '\'
	OR EXISTS (SELECT 1 FROM emails WHERE emails.contact_id = contacts.id
		AND LOWER(emails.email_address) LIKE LOWER(@pattern) ESCAPE '\')
	OR EXISTS (SELECT 1 FROM phones WHERE phones.contact_id = contacts.id
		AND LOWER(phones.phone_number) LIKE LOWER(@pattern) ESCAPE '\')
	OR EXISTS (SELECT 1 FROM addresses WHERE addresses.contact_id = contacts.id
		AND (LOWER(addresses.street_address) LIKE LOWER(@pattern) ESCAPE '\'
			OR LOWER(addresses.city) LIKE LOWER(@pattern) ESCAPE '\'
			OR LOWER(addresses.state) LIKE LOWER(@pattern) ESCAPE '\')))`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// matching filters contacts whose names, emails, phone numbers or address
// street, city or state contain 'search', ignoring case.
func matching(search string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term := strings.TrimSpace(search)
		if term == "" {
			return db
		}

		// both sides go through the database's LOWER so they fold identically
		pattern := "%" + likeEscaper.Replace(term) + "%"
		return db.Where(matchQuery, map[string]interface{}{"pattern": pattern})
	}
}

package services

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode"

	"github.com/giverr/giverr/internal/models"
)

type contactColumns struct {
	email     int
	firstName int
	lastName  int
}

// ParseContactsCSV reads contacts from CSV text whose first non-blank row is a header.
// Recognized headers are email, firstname/first_name/first and lastname/last_name/last in any
// order and case; when a field's header repeats, the leftmost column wins. Rows without any
// recognized value are dropped.
func ParseContactsCSV(text string) ([]models.Contact, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, "\ufeff")))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var columns *contactColumns
	contacts := make([]models.Contact, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ErrInvalidContactsCSV
		}
		if blankRecord(record) {
			continue
		}

		if columns == nil {
			columns = parseContactHeader(record)
			continue
		}

		contact := models.Contact{
			Email:     recordField(record, columns.email),
			FirstName: recordField(record, columns.firstName),
			LastName:  recordField(record, columns.lastName),
		}
		if contact.Empty() {
			continue
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

func parseContactHeader(record []string) *contactColumns {
	columns := &contactColumns{email: -1, firstName: -1, lastName: -1}
	for index, raw := range record {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "email":
			claimColumn(&columns.email, index)
		case "firstname", "first_name", "first":
			claimColumn(&columns.firstName, index)
		case "lastname", "last_name", "last":
			claimColumn(&columns.lastName, index)
		}
	}
	return columns
}

// claimColumn keeps the leftmost header for a field.
func claimColumn(column *int, index int) {
	if *column < 0 {
		*column = index
	}
}

func recordField(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// ParseUsernameList turns a comma or whitespace separated list of handles into name-only
// contacts. "@jane.doe" becomes first name "jane" and last name "doe".
func ParseUsernameList(text string) []models.Contact {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	contacts := make([]models.Contact, 0, len(tokens))
	for _, token := range tokens {
		cleaned := strings.TrimPrefix(token, "@")
		cleaned = strings.NewReplacer(".", " ", "_", " ").Replace(cleaned)

		parts := strings.Fields(cleaned)
		switch len(parts) {
		case 0:
			continue
		case 1:
			contacts = append(contacts, models.Contact{FirstName: parts[0]})
		default:
			contacts = append(contacts, models.Contact{
				FirstName: parts[0],
				LastName:  strings.Join(parts[1:], " "),
			})
		}
	}
	return contacts
}

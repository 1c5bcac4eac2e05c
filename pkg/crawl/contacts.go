package crawl

import (
	"regexp"
	"unicode/utf8"

	"github.com/campuslife/campus-engine/pkg/models"
)

var (
	// Institute email addresses only; outside addresses are not contacts
	// worth surfacing to students.
	emailPattern = regexp.MustCompile(`[\w.%+\-]+@iitpkd\.ac\.in`)

	// Indian mobile numbers, with or without the +91 prefix.
	phonePattern = regexp.MustCompile(`(?:\+91[-\s]?)?[6-9]\d{9}`)
)

// contextRadius is how many characters around an email are kept as context.
const contextRadius = 50

// ExtractContacts finds institute emails and Indian phone numbers in text.
// Each email carries the surrounding text as context.
func ExtractContacts(text string) []models.Contact {
	var contacts []models.Contact

	for _, loc := range emailPattern.FindAllStringIndex(text, -1) {
		start := runeBoundaryBefore(text, loc[0]-contextRadius)
		end := runeBoundaryAfter(text, loc[1]+contextRadius)
		contacts = append(contacts, models.Contact{
			Type:    models.ContactEmail,
			Value:   text[loc[0]:loc[1]],
			Context: text[start:end],
		})
	}

	for _, phone := range phonePattern.FindAllString(text, -1) {
		contacts = append(contacts, models.Contact{
			Type:  models.ContactPhone,
			Value: phone,
		})
	}

	return contacts
}

// runeBoundaryBefore clamps i into [0, len(s)] and walks it back to the
// start of the rune it lands in, so slicing never splits UTF-8 sequences.
func runeBoundaryBefore(s string, i int) int {
	if i < 0 {
		return 0
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// runeBoundaryAfter clamps i into [0, len(s)] and walks it forward to the
// next rune start, keeping the rune it lands in whole.
func runeBoundaryAfter(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}

// DedupeContacts removes contacts sharing an identifier, keeping the first
// occurrence. Order is preserved.
func DedupeContacts(contacts []models.Contact) []models.Contact {
	seen := make(map[string]struct{}, len(contacts))
	var out []models.Contact
	for _, c := range contacts {
		if _, ok := seen[c.Value]; ok {
			continue
		}
		seen[c.Value] = struct{}{}
		out = append(out, c)
	}
	return out
}

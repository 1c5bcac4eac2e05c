package models

// ContactType distinguishes extracted contact identifiers.
type ContactType string

const (
	ContactEmail ContactType = "email"
	ContactPhone ContactType = "phone"
)

// Contact is an email or phone number extracted from crawled pages or
// assistant replies, with the surrounding text kept as context.
type Contact struct {
	Type       ContactType `json:"type"`
	Value      string      `json:"value"`
	Context    string      `json:"context,omitempty"`
	Department string      `json:"department,omitempty"`
}

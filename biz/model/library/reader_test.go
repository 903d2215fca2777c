package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBirthdate() time.Time {
	return time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC)
}

func TestNewReader_Valid(t *testing.T) {
	r, err := NewReader("maria@example.com", "Maria Santos", validBirthdate(), "912345678", true)
	require.NoError(t, err)
	assert.Empty(t, r.ReaderNumber, "the number is assigned on save, not at construction")
}

func TestReaderValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *Reader)
	}{
		{"bad email", func(r *Reader) { r.Username = "not-an-email" }},
		{"empty name", func(r *Reader) { r.Name = "" }},
		{"under minimum age", func(r *Reader) { r.Birthdate = time.Now().AddDate(-MinReaderAge+1, 0, 0) }},
		{"zero birthdate", func(r *Reader) { r.Birthdate = time.Time{} }},
		{"unparseable phone", func(r *Reader) { r.PhoneNumber = "abc" }},
		{"invalid phone", func(r *Reader) { r.PhoneNumber = "11" }},
		{"missing consent", func(r *Reader) { r.GDPRConsent = false }},
		{"malformed number", func(r *Reader) { r.ReaderNumber = "7/2024" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Reader{
				ReaderNumber: "2024/7",
				Username:     "maria@example.com",
				Name:         "Maria Santos",
				Birthdate:    validBirthdate(),
				PhoneNumber:  "912345678",
				GDPRConsent:  true,
			}
			tc.mutate(r)
			assert.Error(t, r.Validate())
		})
	}
}

func TestReaderValidate_InternationalPhone(t *testing.T) {
	_, err := NewReader("maria@example.com", "Maria Santos", validBirthdate(), "+351912345678", true)
	assert.NoError(t, err)
}

func TestReaderValidate_ExactlyMinimumAge(t *testing.T) {
	birthdate := time.Now().AddDate(-MinReaderAge, 0, -1)
	_, err := NewReader("maria@example.com", "Maria Santos", birthdate, "912345678", true)
	assert.NoError(t, err)
}

package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_FirstErrorWins(t *testing.T) {
	v := New()
	assert.True(t, v.Valid())

	v.Check(false, "name", "must be provided")
	v.Check(false, "name", "must not be more than 100 characters")
	v.Check(true, "phone", "must be valid")

	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"name": "must be provided"}, v.Errors)
}

func TestHelpers(t *testing.T) {
	assert.True(t, Matches("ana@example.com", EmailRX))
	assert.False(t, Matches("ana@", EmailRX))

	assert.True(t, PhoneDigits("+15551234567"))
	assert.True(t, PhoneDigits("(555) 123-4567"))
	assert.False(t, PhoneDigits("12-34"))
	assert.False(t, PhoneDigits("call me"))

	assert.True(t, PermittedValue("sms", "sms", "email"))
	assert.False(t, PermittedValue("fax", "sms", "email"))

	assert.True(t, Unique([]string{"a", "b"}))
	assert.False(t, Unique([]string{"a", "a"}))

	assert.False(t, NotBlank("   "))
	assert.True(t, MaxChars("ñandú", 5))

	assert.True(t, Latitude(-90))
	assert.False(t, Longitude(180.5))
}

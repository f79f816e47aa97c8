package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessageContent(t *testing.T) {
	assert.NoError(t, ValidateMessageContent("do I need a visa for Japan?"))
	assert.Error(t, ValidateMessageContent(""))
	assert.Error(t, ValidateMessageContent(strings.Repeat("x", 100001)))
	assert.Error(t, ValidateMessageContent(string([]byte{0xff, 0xfe})))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("traveler@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("no-at-sign"))
	assert.Error(t, ValidateEmail("@example.com"))
	assert.Error(t, ValidateEmail("trailing@"))
	assert.Error(t, ValidateEmail("with space@example.com"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("longenough"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 73)))
}

func TestValidateTripDates(t *testing.T) {
	assert.NoError(t, ValidateTripDates("", ""))
	assert.NoError(t, ValidateTripDates("2026-09-01", "2026-09-10"))
	assert.NoError(t, ValidateTripDates("2026-09-01", ""))
	assert.Error(t, ValidateTripDates("September 1", ""))
	assert.Error(t, ValidateTripDates("2026-09-10", "2026-09-01"))
}

package middleware

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidateMessageContent validates chat message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("content cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateEmail validates a registration or login email address.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email cannot be empty")
	}
	if len(email) > 254 {
		return errors.New("email exceeds maximum length")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t\n") {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidatePassword validates a new account password.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > 72 { // bcrypt input cap
		return errors.New("password exceeds maximum length")
	}
	return nil
}

// ValidateTitle validates a trip title.
func ValidateTitle(title string) error {
	if title == "" {
		return errors.New("title cannot be empty")
	}
	if len(title) > 256 {
		return errors.New("title exceeds maximum length")
	}
	if !utf8.ValidString(title) {
		return errors.New("title must be valid UTF-8")
	}
	return nil
}

// ValidateTripDates validates the optional start/end date pair.
// Dates use YYYY-MM-DD; when both are present the end must not
// precede the start.
func ValidateTripDates(start, end string) error {
	var s, e time.Time
	var err error
	if start != "" {
		if s, err = time.Parse("2006-01-02", start); err != nil {
			return errors.New("start_date must be YYYY-MM-DD")
		}
	}
	if end != "" {
		if e, err = time.Parse("2006-01-02", end); err != nil {
			return errors.New("end_date must be YYYY-MM-DD")
		}
	}
	if start != "" && end != "" && e.Before(s) {
		return errors.New("end_date cannot precede start_date")
	}
	return nil
}

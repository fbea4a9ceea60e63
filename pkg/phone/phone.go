// Package phone validates contact numbers and reformats them to the
// canonical international representation.
package phone

import (
	"errors"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidPhoneNumber is returned for input that cannot be parsed as a
// phone number or parses but is not valid for its region.
var ErrInvalidPhoneNumber = errors.New("invalid phone number format")

// Validate parses raw with no default region, so the number must carry its
// own country code (leading +).
func Validate(raw string) (*phonenumbers.PhoneNumber, error) {
	parsed, err := phonenumbers.Parse(raw, "")
	if err != nil {
		return nil, ErrInvalidPhoneNumber
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return nil, ErrInvalidPhoneNumber
	}
	return parsed, nil
}

// Normalize validates raw and returns it in international format
// ("+CC NNN ..."). Normalizing an already-normalized number yields the same
// string.
func Normalize(raw string) (string, error) {
	parsed, err := Validate(raw)
	if err != nil {
		return "", err
	}
	return phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL), nil
}

// Package nif validates Spanish national identity numbers (DNI and NIE),
// the identifier format the club portal uses for participants.
package nif

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalid = errors.New("invalid nif")

const checkLetters = "TRWAGMYFPDXBNJZSQVHLCKE"

// Validate checks the mod-23 control letter of a DNI (8 digits + letter)
// or NIE (X/Y/Z + 7 digits + letter).
func Validate(id string) error {
	id = strings.ToUpper(strings.TrimSpace(id))
	if len(id) != 9 {
		return ErrInvalid
	}

	digits := id[:8]
	switch id[0] {
	case 'X':
		digits = "0" + id[1:8]
	case 'Y':
		digits = "1" + id[1:8]
	case 'Z':
		digits = "2" + id[1:8]
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return ErrInvalid
	}
	if checkLetters[n%23] != id[8] {
		return ErrInvalid
	}
	return nil
}

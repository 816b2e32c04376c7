package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned when a format name cannot be parsed.
var ErrUnknownFormat = errors.New("unknown tournament format")

// Format identifies one of the three tournament structures.
type Format uint8

const (
	// FormatOpen: everyone enters unseeded.
	FormatOpen Format = iota
	// FormatSeeded: the top 16 by points are seeded into a fixed draw.
	FormatSeeded
	// FormatChampionship: seeded, with a second tier entering late and longer matches.
	FormatChampionship
)

// Formats lists every format in schedule order.
var Formats = []Format{FormatOpen, FormatSeeded, FormatChampionship}

func (f Format) String() string {
	switch f {
	case FormatOpen:
		return "open"
	case FormatSeeded:
		return "seeded"
	case FormatChampionship:
		return "championship"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return FormatOpen, nil
	case "seeded":
		return FormatSeeded, nil
	case "championship", "worlds":
		return FormatChampionship, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

package kernel

import (
	"encoding/base32"
	"fmt"
	"strings"

	"parceldesk/internal/pkg/errs"

	"github.com/google/uuid"
)

// TrackingCodeLength is the number of characters in a rendered tracking code.
const TrackingCodeLength = 16

// crockfordAlphabet omits I, L, O and U so codes survive hand transcription.
const crockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var crockford = base32.NewEncoding(crockfordAlphabet).WithPadding(base32.NoPadding)

// ErrTrackingCodeIsNotConstructed is returned when validating a zero-value TrackingCode.
var ErrTrackingCodeIsNotConstructed = errs.NewValueIsRequiredError(
	"tracking code must be created via a CodeGenerator or ParseTrackingCode")

// TrackingCode is the immutable, globally unique identifier of a package.
// It is the lookup key and the payload encoded on printed labels.
//
// The zero value is invalid. Codes come from a CodeGenerator or from ParseTrackingCode.
// TrackingCode is comparable and can be used as a map key.
type TrackingCode struct {
	value string
}

// ParseTrackingCode turns user input into a TrackingCode.
//
// Input is normalized before validation: surrounding space is trimmed, letters are
// upper-cased, '-' and ' ' group separators are removed, and the look-alikes O, I and L
// are read as 0, 1 and 1.
//
// Example:
//
//	code, err := kernel.ParseTrackingCode("06bx-4rk1-8ms2-t0qz")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(code) // 06BX4RK18MS2T0QZ
func ParseTrackingCode(s string) (TrackingCode, error) {
	normalized := strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ':
			return -1
		case 'O', 'o':
			return '0'
		case 'I', 'i', 'L', 'l':
			return '1'
		}
		if r >= 'a' && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}, strings.TrimSpace(s))

	if normalized == "" {
		return TrackingCode{}, errs.NewValueIsRequiredError("trackingCode")
	}
	if len(normalized) != TrackingCodeLength {
		return TrackingCode{}, errs.NewValueIsInvalidErrorWithCause("trackingCode",
			fmt.Errorf("expected %d characters, got %d", TrackingCodeLength, len(normalized)))
	}
	for _, r := range normalized {
		if !strings.ContainsRune(crockfordAlphabet, r) {
			return TrackingCode{}, errs.NewValueIsInvalidErrorWithCause("trackingCode",
				fmt.Errorf("character %q is not allowed", r))
		}
	}

	return TrackingCode{value: normalized}, nil
}

// MustParseTrackingCode is like ParseTrackingCode but panics on invalid input.
// Intended for tests and constants.
func MustParseTrackingCode(s string) TrackingCode {
	code, err := ParseTrackingCode(s)
	if err != nil {
		panic(err)
	}
	return code
}

// String returns the 16-character canonical form, or "" for the zero value.
func (c TrackingCode) String() string {
	return c.value
}

// IsZero reports whether c is the zero value.
func (c TrackingCode) IsZero() bool {
	return c.value == ""
}

// Validate returns ErrTrackingCodeIsNotConstructed for the zero value.
func (c TrackingCode) Validate() error {
	if c.IsZero() {
		return ErrTrackingCodeIsNotConstructed
	}
	return nil
}

// CodeGenerator issues new tracking codes. Generate never fails.
type CodeGenerator interface {
	Generate() TrackingCode
}

// CodeGeneratorFunc adapts an ordinary function to CodeGenerator.
type CodeGeneratorFunc func() TrackingCode

// Generate calls f.
func (f CodeGeneratorFunc) Generate() TrackingCode {
	return f()
}

// TimeOrderedGenerator builds codes from a UUIDv7.
//
// Layout of the 80 encoded bits:
//
//	48 bits  unix milliseconds
//	12 bits  sub-millisecond sequence, strictly increasing within the process
//	20 bits  random
//
// Because the uuid package keeps (milliseconds, sequence) strictly monotonic across
// goroutines, two codes from one process never share their first 60 bits. The random
// tail keeps codes from separate processes apart. Codes sort in issue order.
type TimeOrderedGenerator struct{}

// NewTimeOrderedGenerator returns the default CodeGenerator.
func NewTimeOrderedGenerator() TimeOrderedGenerator {
	return TimeOrderedGenerator{}
}

// Generate returns a fresh tracking code.
func (TimeOrderedGenerator) Generate() TrackingCode {
	u := uuid.Must(uuid.NewV7())

	var raw [10]byte
	copy(raw[:6], u[:6])
	// u[6] carries the version in its high nibble; the low nibble and u[7] hold the sequence.
	raw[6] = u[6]<<4 | u[7]>>4
	raw[7] = u[7]<<4 | u[8]&0x0F
	raw[8] = u[9]
	raw[9] = u[10]

	return TrackingCode{value: crockford.EncodeToString(raw[:])}
}

// Package models defines typed representations of iRail API responses.
//
// The upstream JSON encodes several scalar types as strings: booleans as
// "0"/"1", timestamps as epoch seconds in a quoted number, and counters as
// quoted integers. The helper types in this file decode both the quoted and
// the bare form, so the models survive either representation.
package models

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Timestamp is an epoch-seconds value, quoted or bare.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON decodes "1718000000" or 1718000000 into a Timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	epoch, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	t.Time = time.Unix(epoch, 0)
	return nil
}

// Bool is a boolean encoded as "0"/"1", "false"/"true" or a bare bool.
type Bool bool

// UnmarshalJSON decodes the iRail boolean representations.
func (b *Bool) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	switch s {
	case "1", "true":
		*b = true
	case "0", "false", "", "null":
		*b = false
	default:
		return fmt.Errorf("parse bool %q", s)
	}
	return nil
}

// Int is an integer, quoted or bare.
type Int int

// UnmarshalJSON decodes "42" or 42 into an Int.
func (i *Int) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		*i = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("parse int %q: %w", s, err)
	}
	*i = Int(v)
	return nil
}

// Float is a floating point number, quoted or bare.
type Float float64

// UnmarshalJSON decodes "4.3517103" or 4.3517103 into a Float.
func (f *Float) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse float %q: %w", s, err)
	}
	*f = Float(v)
	return nil
}

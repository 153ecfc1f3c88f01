package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

// The Optional* types distinguish an absent JSON field (Set=false) from an
// explicit null (Set=true, Value=nil).

type OptionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	s, isNull, err := optionalString(data)
	if err != nil || isNull {
		o.Value = nil
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	o.Value = &id
	return nil
}

type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	s, isNull, err := optionalString(data)
	if err != nil || isNull {
		o.Value = nil
		return err
	}
	o.Value = &s
	return nil
}

type OptionalInt struct {
	Set   bool
	Value *int
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err == nil {
		o.Value = &v
		return nil
	}
	s, isNull, err := optionalString(data)
	if err != nil || isNull {
		o.Value = nil
		return err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	o.Value = &n
	return nil
}

type OptionalBool struct {
	Set   bool
	Value *bool
}

func (o *OptionalBool) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// OptionalDate accepts "YYYY-MM-DD" or an RFC 3339 timestamp.
type OptionalDate struct {
	Set   bool
	Value *datatypes.Date
}

func (o *OptionalDate) UnmarshalJSON(data []byte) error {
	o.Set = true
	s, isNull, err := optionalString(data)
	if err != nil || isNull {
		o.Value = nil
		return err
	}
	d, err := ParseDate(s)
	if err != nil {
		return err
	}
	o.Value = d
	return nil
}

// ParseDate parses a calendar date; the empty string yields nil.
func ParseDate(s string) (*datatypes.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d := datatypes.Date(t)
		return &d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	d := datatypes.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	return &d, nil
}

func today(now time.Time) *datatypes.Date {
	d := datatypes.Date(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
	return &d
}

// optionalString decodes a JSON string, treating null and blank as null.
func optionalString(data []byte) (string, bool, error) {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return "", true, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true, nil
	}
	return s, false, nil
}

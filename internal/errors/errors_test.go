package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestTransient(t *testing.T) {
	base := errors.New("connection reset")
	err := Transient("fetch", base)

	if !IsTransient(err) {
		t.Error("Expected IsTransient to be true")
	}
	if IsPermanent(err) {
		t.Error("Expected IsPermanent to be false")
	}
	if !errors.Is(err, base) {
		t.Error("Expected wrapped error to unwrap to base")
	}
	if err.Error() != "transient failure during fetch: connection reset" {
		t.Errorf("Unexpected message: %s", err.Error())
	}

	if Transient("fetch", nil) != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestTransient_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("tick 3: %w", Transient("send", errors.New("503")))
	if !IsTransient(err) {
		t.Error("Expected IsTransient through fmt.Errorf wrapping")
	}
}

func TestPermanent(t *testing.T) {
	base := errors.New("401 unauthorized")
	err := Permanent("send", base)

	if !IsPermanent(err) {
		t.Error("Expected IsPermanent to be true")
	}
	if IsTransient(err) {
		t.Error("Expected IsTransient to be false")
	}
	if !errors.Is(err, base) {
		t.Error("Expected wrapped error to unwrap to base")
	}

	if Permanent("send", nil) != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestMalformedEntry(t *testing.T) {
	err := MalformedEntryError{Field: "latitude", Reason: "not numeric"}

	if !IsMalformed(err) {
		t.Error("Expected IsMalformed to be true")
	}
	if IsTransient(err) || IsPermanent(err) || IsPersistence(err) {
		t.Error("Expected malformed error not to match other classes")
	}
	want := "malformed feed entry: field 'latitude': not numeric"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestPersistence(t *testing.T) {
	base := errors.New("disk full")
	err := PersistenceError{Operation: "record", Err: base}

	if !IsPersistence(err) {
		t.Error("Expected IsPersistence to be true")
	}
	if !errors.Is(err, base) {
		t.Error("Expected wrapped error to unwrap to base")
	}
	if err.Error() != "persistence error during record: disk full" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

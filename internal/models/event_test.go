package models

import "testing"

func TestEvent_DisplayTitle(t *testing.T) {
	e := Event{Title: "แผ่นดินไหว", TitleTranslated: "Earthquake"}
	if e.DisplayTitle() != "Earthquake" {
		t.Errorf("Expected translated title, got %s", e.DisplayTitle())
	}

	e.TitleTranslated = ""
	if e.DisplayTitle() != "แผ่นดินไหว" {
		t.Errorf("Expected raw title fallback, got %s", e.DisplayTitle())
	}
}

func TestEvent_DisplayDetails(t *testing.T) {
	e := Event{Details: "ลึก 10 กม.", DetailsTranslated: "10 km deep"}
	if e.DisplayDetails() != "10 km deep" {
		t.Errorf("Expected translated details, got %s", e.DisplayDetails())
	}

	e.DetailsTranslated = ""
	if e.DisplayDetails() != "ลึก 10 กม." {
		t.Errorf("Expected raw details fallback, got %s", e.DisplayDetails())
	}
}

func TestEvent_HasMagnitude(t *testing.T) {
	tests := []struct {
		magnitude string
		want      bool
	}{
		{"4.5", true},
		{"", false},
		{"N/A", false},
	}

	for _, tt := range tests {
		e := Event{Magnitude: tt.magnitude}
		if e.HasMagnitude() != tt.want {
			t.Errorf("HasMagnitude(%q) = %v, want %v", tt.magnitude, e.HasMagnitude(), tt.want)
		}
	}
}

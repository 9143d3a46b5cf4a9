// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package models

import "testing"

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     LocationQuery
	}{
		{
			name:     "city and state",
			location: "Chennai, Tamil Nadu",
			want:     LocationQuery{City: "Chennai", State: "Tamil Nadu"},
		},
		{
			name:     "city only falls back to default state",
			location: "Chennai",
			want:     LocationQuery{City: "Chennai", State: "Tamil Nadu"},
		},
		{
			name:     "extra whitespace trimmed",
			location: "  Madurai ,  Tamil Nadu  ",
			want:     LocationQuery{City: "Madurai", State: "Tamil Nadu"},
		},
		{
			name:     "trailing comma falls back to default state",
			location: "Salem,",
			want:     LocationQuery{City: "Salem", State: "Tamil Nadu"},
		},
		{
			name:     "trailing country segment ignored",
			location: "Ludhiana, Punjab, India",
			want:     LocationQuery{City: "Ludhiana", State: "Punjab"},
		},
		{
			name:     "empty string",
			location: "",
			want:     LocationQuery{City: "", State: "Tamil Nadu"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLocation(tt.location, "Tamil Nadu")
			if got != tt.want {
				t.Errorf("ParseLocation(%q) = %+v, want %+v", tt.location, got, tt.want)
			}
		})
	}
}

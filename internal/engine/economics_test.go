// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package engine

import (
	"testing"

	"github.com/thalir-ai/thalir/internal/models"
)

func TestEvaluatePaddy(t *testing.T) {
	// 2 acres of Paddy: 5.0 tons, revenue 110000, cost 50000, profit
	// 60000, margin ~0.545 so risk is Low.
	econ := Evaluate("Paddy", 2)
	if econ.TotalYield != 5.0 {
		t.Errorf("got yield %v, want 5.0", econ.TotalYield)
	}
	if econ.TotalCost != 50000 {
		t.Errorf("got cost %v, want 50000", econ.TotalCost)
	}
	if econ.Profit != 60000 {
		t.Errorf("got profit %v, want 60000", econ.Profit)
	}
	if econ.Risk != models.RiskLow {
		t.Errorf("got risk %v, want Low", econ.Risk)
	}
}

func TestEvaluateUnknownCropUsesDefaults(t *testing.T) {
	// Default economics: 1.0 t/acre, 10000 INR/ton, 10000 INR/acre.
	// Revenue equals cost, so profit is 0 and the margin puts it at High.
	econ := Evaluate("Dragonfruit", 3)
	if econ.TotalYield != 3.0 {
		t.Errorf("got yield %v, want 3.0", econ.TotalYield)
	}
	if econ.TotalCost != 30000 {
		t.Errorf("got cost %v, want 30000", econ.TotalCost)
	}
	if econ.Profit != 0 {
		t.Errorf("got profit %v, want 0", econ.Profit)
	}
	if econ.Risk != models.RiskHigh {
		t.Errorf("got risk %v, want High", econ.Risk)
	}
}

func TestEvaluateRiskTiers(t *testing.T) {
	tests := []struct {
		crop string
		want models.Risk
	}{
		// Paddy margin ~0.545.
		{"Paddy", models.RiskLow},
		// Wheat: revenue 45000, cost 18000, margin 0.6.
		{"Wheat", models.RiskLow},
		// Maize: revenue 60000, cost 20000, margin ~0.667.
		{"Maize", models.RiskLow},
		// Sugarcane: revenue 105000, cost 60000, margin ~0.4286.
		{"Sugarcane", models.RiskLow},
		// Cotton: revenue 72000, cost 35000, margin ~0.514.
		{"Cotton", models.RiskLow},
	}
	for _, tt := range tests {
		if econ := Evaluate(tt.crop, 1); econ.Risk != tt.want {
			t.Errorf("%s: got risk %v, want %v", tt.crop, econ.Risk, tt.want)
		}
	}
}

func TestEvaluateZeroLandArea(t *testing.T) {
	// Zero land means zero revenue; the margin guard must not divide by
	// zero and the risk lands at High.
	econ := Evaluate("Paddy", 0)
	if econ.TotalYield != 0 || econ.TotalCost != 0 || econ.Profit != 0 {
		t.Errorf("got %+v, want all zeros", econ)
	}
	if econ.Risk != models.RiskHigh {
		t.Errorf("got risk %v, want High at zero revenue", econ.Risk)
	}
}

func TestEvaluateRounding(t *testing.T) {
	// 0.333 acres of Paddy: yield 0.8325 rounds to 0.83.
	econ := Evaluate("Paddy", 0.333)
	if econ.TotalYield != 0.83 {
		t.Errorf("got yield %v, want 0.83", econ.TotalYield)
	}
}

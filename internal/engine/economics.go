// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package engine

import (
	"math"

	"github.com/thalir-ai/thalir/internal/models"
)

// CropEconomics is market data per crop: yield in tons/acre, price in
// INR/ton, cultivation cost in INR/acre.
type CropEconomics struct {
	YieldPerAcre float64
	PricePerTon  float64
	CostPerAcre  float64
}

// marketData is the reference market table. Crops without an entry fall
// back to defaultEconomics.
var marketData = map[string]CropEconomics{
	"Paddy":     {YieldPerAcre: 2.5, PricePerTon: 22000, CostPerAcre: 25000},
	"Wheat":     {YieldPerAcre: 1.8, PricePerTon: 25000, CostPerAcre: 18000},
	"Maize":     {YieldPerAcre: 3.0, PricePerTon: 20000, CostPerAcre: 20000},
	"Sugarcane": {YieldPerAcre: 35.0, PricePerTon: 3000, CostPerAcre: 60000},
	"Cotton":    {YieldPerAcre: 1.2, PricePerTon: 60000, CostPerAcre: 35000},
	"Groundnut": {YieldPerAcre: 1.5, PricePerTon: 55000, CostPerAcre: 30000},
}

var defaultEconomics = CropEconomics{YieldPerAcre: 1.0, PricePerTon: 10000, CostPerAcre: 10000}

// Economics is the evaluated outcome for one crop on a given land area.
type Economics struct {
	TotalYield float64
	TotalCost  float64
	Profit     float64
	Risk       models.Risk
}

// Evaluate computes yield, cost, profit and a margin-based risk tier for
// a crop over the given land area in acres. All monetary and yield
// figures are rounded to two decimal places.
func Evaluate(crop string, landArea float64) Economics {
	data, ok := marketData[crop]
	if !ok {
		data = defaultEconomics
	}

	totalYield := data.YieldPerAcre * landArea
	revenue := totalYield * data.PricePerTon
	totalCost := data.CostPerAcre * landArea
	profit := revenue - totalCost

	var margin float64
	if revenue > 0 {
		margin = profit / revenue
	}

	var risk models.Risk
	switch {
	case margin > 0.4:
		risk = models.RiskLow
	case margin > 0.2:
		risk = models.RiskMedium
	default:
		risk = models.RiskHigh
	}

	return Economics{
		TotalYield: round2(totalYield),
		TotalCost:  round2(totalCost),
		Profit:     round2(profit),
		Risk:       risk,
	}
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

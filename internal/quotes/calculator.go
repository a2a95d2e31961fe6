// Package quotes produces deterministic repair price estimates. Prices are
// ranges in centavos so the assistant never promises an exact amount before a
// technician has seen the appliance.
package quotes

import (
	"strings"

	"atendimento_backend/platform/textnorm"
)

// Estimate is a calculated price range.
type Estimate struct {
	ValorMinimo int64
	ValorMaximo int64
	Observacoes string
}

// Input describes the repair to be priced.
type Input struct {
	Equipamento       string
	Marca             string
	DescricaoProblema string
	Bocas             int
}

type priceRange struct {
	min int64
	max int64
}

// Base ranges per appliance family, keyed by folded equipment name. Values
// come from the shop's historical job pricing.
var basePrices = map[string]priceRange{
	"fogao":            {15000, 30000},
	"fogao industrial": {22000, 42000},
	"cooktop":          {18000, 32000},
	"forno":            {16000, 30000},
	"fornos":           {16000, 30000},
	"micro-ondas":      {12000, 25000},
	"microondas":       {12000, 25000},
	"geladeira":        {25000, 45000},
	"freezer":          {25000, 45000},
	"frigobar":         {18000, 35000},
	"maquina de lavar": {20000, 38000},
	"lavadora":         {20000, 38000},
	"lava e seca":      {24000, 42000},
	"secadora":         {20000, 38000},
	"lava-loucas":      {22000, 40000},
	"lava loucas":      {22000, 40000},
	"coifa":            {15000, 28000},
	"depurador":        {13000, 25000},
	"adega":            {25000, 45000},
}

var defaultRange = priceRange{15000, 35000}

const (
	// Each burner beyond the standard four adds labour.
	extraBurnerSurcharge = 2000
	standardBurners      = 4

	// Customers asking for urgent service pay a priority premium.
	urgencyPercent = 20
)

// Calculate produces a price range for the described repair. Same input,
// same output: the calculator holds no state and consults no clock.
func Calculate(in Input) Estimate {
	rng, ok := basePrices[textnorm.Fold(in.Equipamento)]
	if !ok {
		rng = defaultRange
	}

	var notes []string
	if in.Bocas > standardBurners {
		extra := int64(in.Bocas-standardBurners) * extraBurnerSurcharge
		rng.min += extra
		rng.max += extra
	}
	if isUrgent(in.DescricaoProblema) {
		rng.min = rng.min * (100 + urgencyPercent) / 100
		rng.max = rng.max * (100 + urgencyPercent) / 100
		notes = append(notes, "atendimento prioritário incluso")
	}
	notes = append(notes, "valor final confirmado após diagnóstico")

	return Estimate{
		ValorMinimo: rng.min,
		ValorMaximo: rng.max,
		Observacoes: strings.Join(notes, "; "),
	}
}

func isUrgent(problema string) bool {
	folded := textnorm.Fold(problema)
	return strings.Contains(folded, "urgente") || strings.Contains(folded, "urgencia")
}

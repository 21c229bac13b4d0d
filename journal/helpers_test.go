package journal

import (
	"time"

	"github.com/rustyeddy/fxrisk/risk"
)

func sampleAssessment(id string, created time.Time) Assessment {
	return Assessment{
		ID:          id,
		CreatedAt:   created,
		Source:      "replay",
		Instrument:  "USD_MAD",
		WindowStart: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Request:     risk.ReferenceRequest(),
		Result: risk.Result{
			Instrument:                "USD_MAD",
			CurrentRate:               10,
			AmountUSD:                 10000,
			HorizonDays:               61,
			Confidence:                0.95,
			BookedAmount:              100000,
			EstimatedSettlementAmount: 95313.6,
			DailyVaR:                  0.6,
			HorizonVaR:                4.6864,
			PotentialLoss:             4686.4,
			Stress:                    &risk.Stress{Confidence: 0.99, HorizonVaR: 7.8, Loss: 7800},
			Volatility: risk.VolatilityEstimate{
				Model:   0.35,
				Used:    0.2978,
				Clamped: true,
				Nu:      5.5,
			},
			Warnings: []string{"model volatility 0.3500% clamped to 0.2978%"},
		},
	}
}

package risk

import (
	"github.com/rustyeddy/fxrisk/internal/fixture"
	"github.com/rustyeddy/fxrisk/market"
)

func syntheticSnapshot(n int, seed int64, rate float64) market.Snapshot {
	return fixture.Snapshot(n, seed, rate)
}

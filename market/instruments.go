// market/instruments.go
package market

// InstrumentMeta describes a currency pair and the symbols used for it by
// each market-data vendor.
type InstrumentMeta struct {
	Name          string
	BaseCurrency  string
	QuoteCurrency string

	YahooSymbol     string
	OandaInstrument string
}

// Pair renders the instrument as BASE/QUOTE.
func (m InstrumentMeta) Pair() string {
	return m.BaseCurrency + "/" + m.QuoteCurrency
}

// USDMAD is the only pair the risk pipeline supports.
var USDMAD = InstrumentMeta{
	Name:            "USD_MAD",
	BaseCurrency:    "USD",
	QuoteCurrency:   "MAD",
	YahooSymbol:     "USDMAD=X",
	OandaInstrument: "USD_MAD",
}

var Instruments = map[string]InstrumentMeta{
	USDMAD.Name: USDMAD,
}

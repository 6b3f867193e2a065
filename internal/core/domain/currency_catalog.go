package domain

import "time"

// DefaultCurrencies is the fallback currency set used before the catalog has
// ever been built and when no explicit ingestion list is configured.
var DefaultCurrencies = []string{"USD", "MXN", "EUR", "CAD"}

// CurrencyCatalog is the derived singleton listing every base currency with
// known rate data. It is rebuilt from the rate store after each full ingestion
// cycle.
type CurrencyCatalog struct {
	Currencies []string  `json:"currencies"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

package providers

import (
	"context"
	"io"
)

// Namen der fünf Rohtabellen. Jede Tabelle liegt als <name>.csv vor.
const (
	TableBills        = "bills"
	TableLegislators  = "legislators"
	TableBillSponsors = "bill_sponsors"
	TablePolicies     = "bill_policies"
	TablePolicyLinks  = "bill_policy_links"
)

// Tables listet alle Rohtabellen in Ladereihenfolge.
var Tables = []string{TableBills, TableLegislators, TableBillSponsors, TablePolicies, TablePolicyLinks}

// Provider ist das Interface, das jede Datenquelle (lokales Verzeichnis, HTTP, S3) implementieren muss.
type Provider interface {
	// Open öffnet die CSV-Daten einer Rohtabelle. Der Aufrufer schließt den Reader.
	Open(ctx context.Context, table string) (io.ReadCloser, error)

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "local").
	Name() string
}

// FileName gibt den Dateinamen einer Rohtabelle zurück.
func FileName(table string) string {
	return table + ".csv"
}

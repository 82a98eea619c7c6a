package services

import "sort"

// BillRow ist eine (Bill, Policy)-Zuordnung aus dem Join. PolicyID ist nil
// ohne Link-Zeile. PolicyName ist nil, wenn die ID nicht im Katalog steht
// oder dort keinen Namen hat.
type BillRow struct {
	BillRecord
	PolicyID   *string
	PolicyName *string
}

// JoinResult enthält die qualifizierten Bills in Ausgabereihenfolge und ihre
// Policy-Zeilen.
type JoinResult struct {
	Bills []BillRecord
	Rows  []BillRow
}

// FilterBills behält Bills mit congress >= target und sortiert sie nach dem
// letzten Aktionsdatum, neueste zuerst. Bills ohne Datum stehen am Ende,
// Gleichstände behalten ihre Eingabereihenfolge.
func FilterBills(bills []BillRecord, target int) []BillRecord {
	out := make([]BillRecord, 0, len(bills))
	for _, b := range bills {
		if b.Congress >= target {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].LatestActionDate, out[j].LatestActionDate
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.After(*dj)
		}
	})
	return out
}

// JoinPolicies verknüpft Bills per Left Join mit ihren Policy-Links und diese
// mit dem Katalog. Mehrfache Treffer ergeben je eine eigene Zeile.
func JoinPolicies(bills []BillRecord, links []PolicyLink, policies []PolicyRecord) []BillRow {
	linksByBill := make(map[string][]string, len(links))
	for _, l := range links {
		linksByBill[l.BillNumber] = append(linksByBill[l.BillNumber], l.PolicyID)
	}
	namesByID := make(map[string][]string, len(policies))
	for _, p := range policies {
		namesByID[p.ID] = append(namesByID[p.ID], p.Name)
	}

	rows := make([]BillRow, 0, len(bills))
	for _, b := range bills {
		ids := linksByBill[b.BillNumber]
		if len(ids) == 0 {
			rows = append(rows, BillRow{BillRecord: b})
			continue
		}
		for _, id := range ids {
			names := namesByID[id]
			if len(names) == 0 {
				rows = append(rows, BillRow{BillRecord: b, PolicyID: &id})
				continue
			}
			for _, name := range names {
				if name == "" {
					rows = append(rows, BillRow{BillRecord: b, PolicyID: &id})
					continue
				}
				rows = append(rows, BillRow{BillRecord: b, PolicyID: &id, PolicyName: &name})
			}
		}
	}
	return rows
}

// FilterAndJoin führt Congress-Filter und Policy-Joins nacheinander aus.
func FilterAndJoin(t *Tables, target int) JoinResult {
	bills := FilterBills(t.Bills, target)
	return JoinResult{
		Bills: bills,
		Rows:  JoinPolicies(bills, t.PolicyLinks, t.Policies),
	}
}

package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/The-Policy-Posse/Network-Graph-1/models"
)

var (
	// ErrInsufficientData wird gemeldet, wenn kein sinnvoller Snapshot
	// entstehen kann.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNoValidDates: Bills vorhanden, aber kein einziges gültiges Datum.
	ErrNoValidDates = fmt.Errorf("%w: no valid dates", ErrInsufficientData)
)

// AssembleInput bündelt die Zwischenergebnisse, aus denen ein Snapshot entsteht.
type AssembleInput struct {
	Bills             []BillRecord
	BillRows          []models.Bill
	Legislators       []models.Legislator
	Collaborations    []models.Collaboration
	Policies          []models.Policy
	MinCollaborations int
	RunID             string
	GeneratedAt       time.Time
}

// Assemble berechnet die Metadaten und baut den Snapshot zusammen.
func Assemble(in AssembleInput) (*models.Snapshot, error) {
	if len(in.Bills) == 0 {
		return nil, fmt.Errorf("%w: no qualifying bills", ErrInsufficientData)
	}

	cr := models.CongressRange{Start: in.Bills[0].Congress, End: in.Bills[0].Congress}
	for _, b := range in.Bills[1:] {
		cr.Start = min(cr.Start, b.Congress)
		cr.End = max(cr.End, b.Congress)
	}

	dr, err := dateRange(in.Bills)
	if err != nil {
		return nil, err
	}

	parties := make(map[string]int)
	for _, l := range in.Legislators {
		parties[l.Party]++
	}

	snap := &models.Snapshot{
		Legislators:    nonNil(in.Legislators),
		Bills:          nonNil(in.BillRows),
		Collaborations: nonNil(in.Collaborations),
		Policies:       nonNil(in.Policies),
		Metadata: models.Metadata{
			RunID:               in.RunID,
			CongressRange:       cr,
			TotalBills:          len(in.BillRows),
			TotalCollaborations: len(in.Collaborations),
			TotalLegislators:    len(in.Legislators),
			DateRange:           dr,
			PartyDistribution:   parties,
			Policies: models.PolicySummary{
				Total:  len(in.Policies),
				Counts: PolicyHistogram(in.BillRows),
			},
			MinCollaborations: in.MinCollaborations,
			DateGenerated:     in.GeneratedAt.Format(dateLayout),
		},
	}
	return snap, nil
}

// PolicyHistogram zählt Bill-Zeilen pro Policy-Name ohne Uncategorized.
func PolicyHistogram(bills []models.Bill) map[string]int {
	counts := make(map[string]int)
	for _, b := range bills {
		if b.PolicyName == models.Uncategorized {
			continue
		}
		counts[b.PolicyName]++
	}
	return counts
}

// PolicyCount ist ein Eintrag des Histogramms.
type PolicyCount struct {
	Name  string
	Count int
}

// TopPolicies liefert die n größten Einträge, bei Gleichstand nach Name.
func TopPolicies(counts map[string]int, n int) []PolicyCount {
	out := make([]PolicyCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, PolicyCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func dateRange(bills []BillRecord) (models.DateRange, error) {
	var first, last *time.Time
	for _, b := range bills {
		d := b.LatestActionDate
		if d == nil {
			continue
		}
		if first == nil || d.Before(*first) {
			first = d
		}
		if last == nil || d.After(*last) {
			last = d
		}
	}
	if first == nil {
		return models.DateRange{}, ErrNoValidDates
	}
	return models.DateRange{Start: first.Format(dateLayout), End: last.Format(dateLayout)}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package services

import "sort"

// AnomalyKind benennt eine Klasse von Datenqualitätsproblemen, die mit einem
// festen Ersatzwert aufgefangen werden, statt den Lauf abzubrechen.
type AnomalyKind string

const (
	AnomalyUnparseableDate     AnomalyKind = "unparseable_date"
	AnomalyMissingDistrict     AnomalyKind = "missing_district"
	AnomalyUnparseableDistrict AnomalyKind = "unparseable_district"
	AnomalyMissingParty        AnomalyKind = "missing_party"
	AnomalyDuplicateBill       AnomalyKind = "duplicate_bill"
	AnomalyDuplicateLegislator AnomalyKind = "duplicate_legislator"
	AnomalyMissingPrimary      AnomalyKind = "missing_primary_sponsor"
	AnomalyMultiplePrimary     AnomalyKind = "multiple_primary_sponsors"
	AnomalyDuplicateCosponsor  AnomalyKind = "duplicate_cosponsor"
	AnomalySelfPair            AnomalyKind = "self_pair"
	AnomalyUnknownMember       AnomalyKind = "unknown_member"
	AnomalyUnknownSponsorType  AnomalyKind = "unknown_sponsor_type"
	AnomalyMissingPolicyID     AnomalyKind = "missing_policy_id"
)

// QualityReport zählt die Anomalien eines einzelnen Pipeline-Laufs.
type QualityReport struct {
	counts map[AnomalyKind]int
}

// NewQualityReport erstellt einen leeren Report.
func NewQualityReport() *QualityReport {
	return &QualityReport{counts: map[AnomalyKind]int{}}
}

// Add zählt n Vorkommen von kind. Ein nil-Report ignoriert den Aufruf.
func (q *QualityReport) Add(kind AnomalyKind, n int) {
	if q == nil || n == 0 {
		return
	}
	q.counts[kind] += n
}

// Count gibt zurück, wie oft kind gezählt wurde.
func (q *QualityReport) Count(kind AnomalyKind) int {
	if q == nil {
		return 0
	}
	return q.counts[kind]
}

// Counts liefert eine Kopie aller Zähler ungleich null.
func (q *QualityReport) Counts() map[AnomalyKind]int {
	out := make(map[AnomalyKind]int, len(q.counts))
	for k, v := range q.counts {
		out[k] = v
	}
	return out
}

// Kinds liefert die gezählten Arten in lexikalischer Reihenfolge.
func (q *QualityReport) Kinds() []AnomalyKind {
	kinds := make([]AnomalyKind, 0, len(q.counts))
	for k := range q.counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

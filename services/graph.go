package services

import "github.com/The-Policy-Posse/Network-Graph-1/models"

// PairKey identifiziert ein ungeordnetes Paar. A ist immer die kleinere ID.
type PairKey struct {
	A, B string
}

// CanonicalPair ordnet zwei IDs. Bei einem Selbst-Paar ist ok false.
func CanonicalPair(x, y string) (PairKey, bool) {
	switch {
	case x == y:
		return PairKey{}, false
	case x < y:
		return PairKey{A: x, B: y}, true
	default:
		return PairKey{A: y, B: x}, true
	}
}

// GraphInput enthält alles, was der Graphaufbau liest.
type GraphInput struct {
	// Bills sind die qualifizierten Bills in Ausgabereihenfolge.
	Bills        []BillRecord
	Sponsorships []Sponsorship
	// KnownMembers beschränkt die Endpunkte auf bekannte Abgeordnete. Bei nil
	// entfällt die Prüfung.
	KnownMembers map[string]struct{}
}

type billPairs struct {
	bill  BillRecord
	pairs []PairKey
}

// BuildCollaborations zählt zuerst jedes Paar aus Hauptsponsor und Co-Sponsor
// über alle qualifizierten Bills und gibt danach pro (Bill, Co-Sponsor) einen
// Eintrag aus, sofern das Paar minCount erreicht. Die Reihenfolge folgt den
// Bills. Bills ohne Hauptsponsor entfallen, bei mehreren gilt der erste.
func BuildCollaborations(in GraphInput, minCount int, q *QualityReport) []models.Collaboration {
	resolved := resolvePairs(in, q)

	counts := make(map[PairKey]int)
	for _, bp := range resolved {
		for _, pair := range bp.pairs {
			counts[pair]++
		}
	}

	out := make([]models.Collaboration, 0)
	for _, bp := range resolved {
		for _, pair := range bp.pairs {
			if counts[pair] < minCount {
				continue
			}
			out = append(out, models.Collaboration{
				Source:       pair.A,
				Target:       pair.B,
				BillNumber:   bp.bill.BillNumber,
				Congress:     bp.bill.Congress,
				Title:        bp.bill.Title,
				LatestAction: bp.bill.LatestActionText,
				ActionDate:   formatDate(bp.bill),
				Relationship: models.RelationshipPrimaryCosponsor,
			})
		}
	}
	return out
}

// resolvePairs bestimmt pro Bill den Hauptsponsor und die kanonischen Paare
// mit seinen Co-Sponsoren. Alle Anomalien werden hier genau einmal gezählt.
func resolvePairs(in GraphInput, q *QualityReport) []billPairs {
	qualifying := make(map[string]struct{}, len(in.Bills))
	for _, b := range in.Bills {
		qualifying[b.BillNumber] = struct{}{}
	}
	known := func(id string) bool {
		if in.KnownMembers == nil {
			return true
		}
		_, ok := in.KnownMembers[id]
		return ok
	}

	primary := make(map[string]string)
	cosponsors := make(map[string][]string)
	seen := make(map[string]map[string]struct{})
	for _, s := range in.Sponsorships {
		if _, ok := qualifying[s.BillNumber]; !ok {
			continue
		}
		switch s.Role {
		case SponsorPrimary:
			if prev, ok := primary[s.BillNumber]; ok {
				if prev != s.MemberID {
					q.Add(AnomalyMultiplePrimary, 1)
				}
				continue
			}
			primary[s.BillNumber] = s.MemberID
		case SponsorCosponsor:
			set, ok := seen[s.BillNumber]
			if !ok {
				set = make(map[string]struct{})
				seen[s.BillNumber] = set
			}
			if _, dup := set[s.MemberID]; dup {
				q.Add(AnomalyDuplicateCosponsor, 1)
				continue
			}
			set[s.MemberID] = struct{}{}
			if !known(s.MemberID) {
				q.Add(AnomalyUnknownMember, 1)
				continue
			}
			cosponsors[s.BillNumber] = append(cosponsors[s.BillNumber], s.MemberID)
		default:
			q.Add(AnomalyUnknownSponsorType, 1)
		}
	}

	out := make([]billPairs, 0, len(in.Bills))
	for _, b := range in.Bills {
		p, ok := primary[b.BillNumber]
		if !ok {
			q.Add(AnomalyMissingPrimary, 1)
			continue
		}
		if !known(p) {
			q.Add(AnomalyUnknownMember, 1)
			continue
		}
		bp := billPairs{bill: b}
		for _, c := range cosponsors[b.BillNumber] {
			pair, ok := CanonicalPair(p, c)
			if !ok {
				q.Add(AnomalySelfPair, 1)
				continue
			}
			bp.pairs = append(bp.pairs, pair)
		}
		out = append(out, bp)
	}
	return out
}

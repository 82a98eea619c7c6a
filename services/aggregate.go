package services

import "github.com/The-Policy-Posse/Network-Graph-1/models"

// ActiveMembers liefert alle IDs, die als Source oder Target vorkommen.
func ActiveMembers(collabs []models.Collaboration) map[string]struct{} {
	active := make(map[string]struct{})
	for _, c := range collabs {
		active[c.Source] = struct{}{}
		active[c.Target] = struct{}{}
	}
	return active
}

// FilterActive behält Abgeordnete mit mindestens einer Kollaboration in
// ihrer ursprünglichen Reihenfolge.
func FilterActive(all []models.Legislator, collabs []models.Collaboration) []models.Legislator {
	active := ActiveMembers(collabs)
	out := make([]models.Legislator, 0, len(active))
	for _, l := range all {
		if _, ok := active[l.ID]; ok {
			out = append(out, l)
		}
	}
	return out
}

// ComputeMetrics zählt Kollaborationen pro Abgeordnetem. Jeder Eintrag zählt
// für beide Endpunkte, jeweils unter der Partei des Gegenübers.
func ComputeMetrics(legislators []models.Legislator, collabs []models.Collaboration) map[string]*models.Metrics {
	party := make(map[string]string, len(legislators))
	for _, l := range legislators {
		party[l.ID] = l.Party
	}
	partyOf := func(id string) string {
		if p, ok := party[id]; ok && p != "" {
			return p
		}
		return models.DefaultParty
	}

	stats := make(map[string]*models.Metrics)
	bump := func(id, other string) {
		m, ok := stats[id]
		if !ok {
			m = &models.Metrics{PartyCollaborations: map[string]int{}}
			stats[id] = m
		}
		m.TotalCollaborations++
		m.PartyCollaborations[partyOf(other)]++
	}
	for _, c := range collabs {
		bump(c.Source, c.Target)
		bump(c.Target, c.Source)
	}
	return stats
}

// AttachMetrics filtert auf die aktiven Abgeordneten und liefert Kopien mit
// Metriken. Die Eingabe bleibt unverändert.
func AttachMetrics(all []models.Legislator, collabs []models.Collaboration) []models.Legislator {
	active := FilterActive(all, collabs)
	stats := ComputeMetrics(active, collabs)
	for i := range active {
		if m, ok := stats[active[i].ID]; ok {
			active[i].Metrics = m
		}
	}
	return active
}

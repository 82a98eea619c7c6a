package services

import "github.com/The-Policy-Posse/Network-Graph-1/models"

const dateLayout = "2006-01-02"

// ProjectLegislators bildet normalisierte Abgeordnete auf Netzwerkknoten ab.
func ProjectLegislators(recs []LegislatorRecord) []models.Legislator {
	out := make([]models.Legislator, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.Legislator{
			ID:        r.ID,
			Name:      r.FullName,
			State:     r.State,
			District:  r.District,
			Party:     r.Party,
			FirstName: r.FirstName,
			LastName:  r.LastName,
		})
	}
	return out
}

// ProjectBills bildet Join-Zeilen auf öffentliche Bill-Einträge ab.
func ProjectBills(rows []BillRow) []models.Bill {
	out := make([]models.Bill, 0, len(rows))
	for _, r := range rows {
		b := models.Bill{
			BillNumber:       r.BillNumber,
			Congress:         r.Congress,
			Title:            r.Title,
			LatestActionDate: formatDate(r.BillRecord),
			LatestActionText: r.LatestActionText,
			OriginChamber:    r.OriginChamber,
			PolicyID:         r.PolicyID,
			PolicyName:       models.Uncategorized,
		}
		if r.PolicyName != nil {
			b.PolicyName = *r.PolicyName
		}
		out = append(out, b)
	}
	return out
}

// ProjectPolicies übernimmt den Policy-Katalog.
func ProjectPolicies(recs []PolicyRecord) []models.Policy {
	out := make([]models.Policy, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.Policy{ID: r.ID, Name: r.Name})
	}
	return out
}

func formatDate(b BillRecord) *string {
	if b.LatestActionDate == nil {
		return nil
	}
	s := b.LatestActionDate.Format(dateLayout)
	return &s
}

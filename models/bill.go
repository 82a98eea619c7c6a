package models

// Uncategorized ist der Policy-Name für Bills ohne Zuordnung.
const Uncategorized = "Uncategorized"

// Bill ist ein Gesetzentwurf mit genau einer Policy-Zuordnung. Ein Entwurf
// mit mehreren Policies erscheint mehrfach, einmal pro Zuordnung.
type Bill struct {
	BillNumber       string  `json:"bill_number"`
	Congress         int     `json:"congress"`
	Title            string  `json:"title"`
	LatestActionDate *string `json:"latest_action_date"` // YYYY-MM-DD, nil wenn unbekannt
	LatestActionText string  `json:"latest_action_text"`
	OriginChamber    string  `json:"origin_chamber"`
	PolicyID         *string `json:"policy_id"`
	PolicyName       string  `json:"policy_name"`
}

// Policy ist ein Eintrag des Policy-Katalogs.
type Policy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

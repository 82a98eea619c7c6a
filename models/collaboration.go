package models

// RelationshipPrimaryCosponsor ist der einzige derzeit erzeugte Kantentyp.
const RelationshipPrimaryCosponsor = "Primary-Cosponsor"

// Collaboration ist eine Kante zwischen Hauptsponsor und Co-Sponsor eines
// Bills. Source und Target sind sortiert, die Kante ist also ungerichtet.
// Pro Paar und Bill gibt es einen eigenen Eintrag.
type Collaboration struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	BillNumber   string  `json:"bill_number"`
	Congress     int     `json:"congress"`
	Title        string  `json:"title"`
	LatestAction string  `json:"latest_action"`
	ActionDate   *string `json:"action_date"`
	Relationship string  `json:"relationship"`
}

package models

// Snapshot ist das vollständige Netzwerk-Dokument eines Pipeline-Laufs.
// Er wird einmal erzeugt und danach nicht mehr verändert.
type Snapshot struct {
	Legislators    []Legislator    `json:"legislators"`
	Bills          []Bill          `json:"bills"`
	Collaborations []Collaboration `json:"collaborations"`
	Policies       []Policy        `json:"policies"`
	Metadata       Metadata        `json:"metadata"`
}

// Metadata beschreibt den Snapshot als Ganzes.
type Metadata struct {
	RunID               string         `json:"run_id"`
	CongressRange       CongressRange  `json:"congress_range"`
	TotalBills          int            `json:"total_bills"`
	TotalCollaborations int            `json:"total_collaborations"`
	TotalLegislators    int            `json:"total_legislators"`
	DateRange           DateRange      `json:"date_range"`
	PartyDistribution   map[string]int `json:"party_distribution"`
	Policies            PolicySummary  `json:"policies"`
	MinCollaborations   int            `json:"min_collaborations"`
	DateGenerated       string         `json:"date_generated"`
}

// CongressRange ist der Bereich der enthaltenen Congress-Nummern.
type CongressRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DateRange ist der Bereich der letzten Aktionsdaten (YYYY-MM-DD).
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PolicySummary enthält Katalogumfang und Bills pro Policy-Name.
type PolicySummary struct {
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}

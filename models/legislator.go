package models

// Legislator ist ein Knoten des Netzwerks (ein Abgeordneter bzw. Senator).
type Legislator struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	State     string   `json:"state"`
	District  *int     `json:"district"` // nil bei Senatoren und At-Large-Sitzen
	Party     string   `json:"party"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Metrics   *Metrics `json:"metrics,omitempty"`
}

// Metrics fasst die Kollaborationen eines Abgeordneten zusammen.
// PrimaryCount und CosponsorCount werden derzeit nicht befüllt.
type Metrics struct {
	PrimaryCount        int            `json:"primary_count"`
	CosponsorCount      int            `json:"cosponsor_count"`
	TotalCollaborations int            `json:"total_collaborations"`
	PartyCollaborations map[string]int `json:"party_collaborations"`
}

// DefaultParty wird gesetzt, wenn keine Parteizugehörigkeit bekannt ist.
const DefaultParty = "O"

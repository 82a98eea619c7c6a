package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/The-Policy-Posse/Network-Graph-1/models"
)

func TestProjectLegislators(t *testing.T) {
	recs := []LegislatorRecord{
		{ID: "P1", FirstName: "Ada", LastName: "Lovelace", FullName: "Ada Lovelace", State: "NY", District: intPtr(3), Party: "D"},
		{ID: "P2", FirstName: "Alan", LastName: "Turing", FullName: "Alan Turing", State: "CA", Party: "O"},
	}
	want := []models.Legislator{
		{ID: "P1", Name: "Ada Lovelace", State: "NY", District: intPtr(3), Party: "D", FirstName: "Ada", LastName: "Lovelace"},
		{ID: "P2", Name: "Alan Turing", State: "CA", Party: "O", FirstName: "Alan", LastName: "Turing"},
	}
	if diff := cmp.Diff(want, ProjectLegislators(recs)); diff != "" {
		t.Errorf("ProjectLegislators() mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectBills(t *testing.T) {
	rows := []BillRow{
		{
			BillRecord: BillRecord{BillNumber: "B1", Congress: 117, Title: "T", LatestActionDate: day("2021-02-03"), LatestActionText: "Passed", OriginChamber: "House"},
			PolicyID:   strPtr("1"),
			PolicyName: strPtr("Health"),
		},
		{
			BillRecord: BillRecord{BillNumber: "B2", Congress: 118},
			PolicyID:   strPtr("9"),
		},
	}
	want := []models.Bill{
		{BillNumber: "B1", Congress: 117, Title: "T", LatestActionDate: strPtr("2021-02-03"), LatestActionText: "Passed", OriginChamber: "House", PolicyID: strPtr("1"), PolicyName: "Health"},
		{BillNumber: "B2", Congress: 118, PolicyID: strPtr("9"), PolicyName: models.Uncategorized},
	}
	if diff := cmp.Diff(want, ProjectBills(rows)); diff != "" {
		t.Errorf("ProjectBills() mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectPolicies(t *testing.T) {
	got := ProjectPolicies([]PolicyRecord{{ID: "1", Name: "Health"}})
	if diff := cmp.Diff([]models.Policy{{ID: "1", Name: "Health"}}, got); diff != "" {
		t.Errorf("ProjectPolicies() mismatch (-want +got):\n%s", diff)
	}
}

package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/The-Policy-Posse/Network-Graph-1/models"
)

func TestAssemble(t *testing.T) {
	generated := time.Date(2024, 7, 4, 15, 0, 0, 0, time.UTC)
	bills := []BillRecord{
		{BillNumber: "B1", Congress: 118, LatestActionDate: day("2023-02-01")},
		{BillNumber: "B2", Congress: 117},
		{BillNumber: "B3", Congress: 119, LatestActionDate: day("2021-09-30")},
	}
	rows := []models.Bill{
		{BillNumber: "B1", PolicyName: "Health"},
		{BillNumber: "B1", PolicyName: "Taxation"},
		{BillNumber: "B2", PolicyName: models.Uncategorized},
		{BillNumber: "B3", PolicyName: "Health"},
	}
	legislators := []models.Legislator{{ID: "A", Party: "D"}, {ID: "B", Party: "R"}, {ID: "C", Party: "D"}}

	t.Run("should compute metadata", func(t *testing.T) {
		snap, err := Assemble(AssembleInput{
			Bills:             bills,
			BillRows:          rows,
			Legislators:       legislators,
			Collaborations:    []models.Collaboration{collab("A", "B", "B1")},
			Policies:          []models.Policy{{ID: "1", Name: "Health"}, {ID: "2", Name: "Taxation"}, {ID: "3", Name: "Defense"}},
			MinCollaborations: 2,
			RunID:             "run-42",
			GeneratedAt:       generated,
		})
		require.NoError(t, err)

		md := snap.Metadata
		assert.Equal(t, "run-42", md.RunID)
		assert.Equal(t, models.CongressRange{Start: 117, End: 119}, md.CongressRange)
		assert.Equal(t, models.DateRange{Start: "2021-09-30", End: "2023-02-01"}, md.DateRange)
		assert.Equal(t, 4, md.TotalBills)
		assert.Equal(t, 1, md.TotalCollaborations)
		assert.Equal(t, 3, md.TotalLegislators)
		assert.Equal(t, map[string]int{"D": 2, "R": 1}, md.PartyDistribution)
		assert.Equal(t, 3, md.Policies.Total)
		assert.Equal(t, map[string]int{"Health": 2, "Taxation": 1}, md.Policies.Counts)
		assert.Equal(t, 2, md.MinCollaborations)
		assert.Equal(t, "2024-07-04", md.DateGenerated)
	})

	t.Run("should fail without qualifying bills", func(t *testing.T) {
		_, err := Assemble(AssembleInput{GeneratedAt: generated})
		assert.ErrorIs(t, err, ErrInsufficientData)
		assert.NotErrorIs(t, err, ErrNoValidDates)
	})

	t.Run("should fail when no bill has a date", func(t *testing.T) {
		_, err := Assemble(AssembleInput{
			Bills:    []BillRecord{{BillNumber: "B1", Congress: 117}},
			BillRows: []models.Bill{{BillNumber: "B1", PolicyName: models.Uncategorized}},
		})
		assert.ErrorIs(t, err, ErrNoValidDates)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("should serialize empty collections as arrays", func(t *testing.T) {
		snap, err := Assemble(AssembleInput{
			Bills:    []BillRecord{{BillNumber: "B1", Congress: 117, LatestActionDate: day("2021-01-01")}},
			BillRows: []models.Bill{{BillNumber: "B1", PolicyName: models.Uncategorized}},
		})
		require.NoError(t, err)
		raw, err := json.Marshal(snap)
		require.NoError(t, err)

		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.JSONEq(t, `[]`, string(doc["legislators"]))
		assert.JSONEq(t, `[]`, string(doc["collaborations"]))
		assert.JSONEq(t, `[]`, string(doc["policies"]))
	})
}

func TestTopPolicies(t *testing.T) {
	counts := map[string]int{"Health": 4, "Taxation": 4, "Defense": 9, "Energy": 1, "Crime": 2, "Labor": 3}
	got := TopPolicies(counts, 5)
	assert.Equal(t, []PolicyCount{
		{Name: "Defense", Count: 9},
		{Name: "Health", Count: 4},
		{Name: "Taxation", Count: 4},
		{Name: "Labor", Count: 3},
		{Name: "Crime", Count: 2},
	}, got)
	assert.Empty(t, TopPolicies(nil, 5))
}

func TestDistrictSerialization(t *testing.T) {
	raw, err := json.Marshal([]models.Legislator{{ID: "S1"}, {ID: "H1", District: intPtr(7)}})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"S1","name":"","state":"","district":null,"party":"","first_name":"","last_name":""},
		{"id":"H1","name":"","state":"","district":7,"party":"","first_name":"","last_name":""}
	]`, string(raw))
}

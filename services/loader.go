package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/The-Policy-Posse/Network-Graph-1/models"
	"github.com/The-Policy-Posse/Network-Graph-1/providers"
)

// Sponsor-Rollen, wie sie in bill_sponsors.sponsor_type stehen.
const (
	SponsorPrimary   = "Primary"
	SponsorCosponsor = "Cosponsor"
)

// SourceError kennzeichnet einen Eingabefehler in einer bestimmten Quelle.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// BillRecord ist eine bereinigte Zeile der bills-Tabelle.
type BillRecord struct {
	BillNumber       string
	Congress         int
	Title            string
	LatestActionDate *time.Time
	LatestActionText string
	OriginChamber    string
}

// LegislatorRecord ist eine bereinigte Zeile der legislators-Tabelle.
type LegislatorRecord struct {
	ID        string
	FirstName string
	LastName  string
	FullName  string
	State     string
	District  *int
	Party     string
}

// Sponsorship verbindet einen Abgeordneten in einer Rolle mit einer Bill.
type Sponsorship struct {
	BillNumber string
	MemberID   string
	Role       string
}

// PolicyRecord ist eine Zeile des Policy-Katalogs.
type PolicyRecord struct {
	ID   string
	Name string
}

// PolicyLink ordnet einer Bill eine Policy zu.
type PolicyLink struct {
	BillNumber string
	PolicyID   string
}

// Tables enthält die fünf normalisierten Eingabetabellen eines Laufs.
type Tables struct {
	Bills        []BillRecord
	Legislators  []LegislatorRecord
	Sponsorships []Sponsorship
	Policies     []PolicyRecord
	PolicyLinks  []PolicyLink
}

var requiredColumns = map[string][]string{
	providers.TableBills:        {"bill_number", "congress", "title", "latest_action_date", "latest_action_text", "origin_chamber"},
	providers.TableLegislators:  {"bioguide_id", "first_name", "last_name", "state", "district", "party"},
	providers.TableBillSponsors: {"bill_number", "bioguide_id", "sponsor_type"},
	providers.TablePolicies:     {"policy_id", "name"},
	providers.TablePolicyLinks:  {"bill_number", "policy_id"},
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
}

// LoadTables liest alle fünf Quellen über den Provider und normalisiert sie.
// Strukturelle Fehler brechen den Lauf ab; Datenqualitätsprobleme werden im
// Report gezählt.
func LoadTables(ctx context.Context, p providers.Provider, q *QualityReport) (*Tables, error) {
	t := &Tables{}
	seenBills := map[string]struct{}{}
	seenMembers := map[string]struct{}{}

	err := readTable(ctx, p, providers.TableBills, func(r row) error {
		rec, err := parseBill(r, q)
		if err != nil {
			return err
		}
		if _, dup := seenBills[rec.BillNumber]; dup {
			q.Add(AnomalyDuplicateBill, 1)
			return nil
		}
		seenBills[rec.BillNumber] = struct{}{}
		t.Bills = append(t.Bills, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readTable(ctx, p, providers.TableLegislators, func(r row) error {
		rec, err := parseLegislator(r, q)
		if err != nil {
			return err
		}
		if _, dup := seenMembers[rec.ID]; dup {
			q.Add(AnomalyDuplicateLegislator, 1)
			return nil
		}
		seenMembers[rec.ID] = struct{}{}
		t.Legislators = append(t.Legislators, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readTable(ctx, p, providers.TableBillSponsors, func(r row) error {
		bill, err := r.required("bill_number")
		if err != nil {
			return err
		}
		member, err := r.required("bioguide_id")
		if err != nil {
			return err
		}
		t.Sponsorships = append(t.Sponsorships, Sponsorship{
			BillNumber: bill,
			MemberID:   member,
			Role:       strings.TrimSpace(r.get("sponsor_type")),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readTable(ctx, p, providers.TablePolicies, func(r row) error {
		id, err := r.required("policy_id")
		if err != nil {
			return err
		}
		t.Policies = append(t.Policies, PolicyRecord{ID: canonicalID(id), Name: cleanText(r.get("name"))})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readTable(ctx, p, providers.TablePolicyLinks, func(r row) error {
		bill, err := r.required("bill_number")
		if err != nil {
			return err
		}
		id := strings.TrimSpace(r.get("policy_id"))
		if id == "" {
			q.Add(AnomalyMissingPolicyID, 1)
			return nil
		}
		t.PolicyLinks = append(t.PolicyLinks, PolicyLink{BillNumber: bill, PolicyID: canonicalID(id)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func parseBill(r row, q *QualityReport) (BillRecord, error) {
	number, err := r.required("bill_number")
	if err != nil {
		return BillRecord{}, err
	}
	congress, err := parseCongress(r.get("congress"))
	if err != nil {
		return BillRecord{}, r.errorf("bill %s: %v", number, err)
	}
	rec := BillRecord{
		BillNumber:       number,
		Congress:         congress,
		Title:            cleanText(r.get("title")),
		LatestActionText: cleanText(r.get("latest_action_text")),
		OriginChamber:    strings.TrimSpace(r.get("origin_chamber")),
	}
	raw := strings.TrimSpace(r.get("latest_action_date"))
	if raw != "" {
		if d, ok := parseDate(raw); ok {
			rec.LatestActionDate = &d
		} else {
			q.Add(AnomalyUnparseableDate, 1)
		}
	}
	return rec, nil
}

func parseLegislator(r row, q *QualityReport) (LegislatorRecord, error) {
	id, err := r.required("bioguide_id")
	if err != nil {
		return LegislatorRecord{}, err
	}
	rec := LegislatorRecord{
		ID:        id,
		FirstName: cleanText(r.get("first_name")),
		LastName:  cleanText(r.get("last_name")),
		State:     strings.TrimSpace(r.get("state")),
		Party:     strings.TrimSpace(r.get("party")),
	}
	rec.FullName = rec.FirstName + " " + rec.LastName
	if rec.Party == "" {
		rec.Party = models.DefaultParty
		q.Add(AnomalyMissingParty, 1)
	}
	district, kind := parseDistrict(r.get("district"))
	rec.District = district
	if kind != "" {
		q.Add(kind, 1)
	}
	return rec, nil
}

// parseCongress akzeptiert Ganzzahlen auch in der Form "117.0".
func parseCongress(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing congress")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid congress %q", s)
	}
	return int(f), nil
}

// parseDistrict liefert nil für fehlende Werte und die Markierung -1. Alles
// außer ganzen Zahlen ab 0 gilt als nicht lesbar.
func parseDistrict(s string) (*int, AnomalyKind) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, AnomalyMissingDistrict
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < -1 || f > math.MaxInt32 {
		return nil, AnomalyUnparseableDistrict
	}
	if f == -1 {
		return nil, ""
	}
	n := int(f)
	return &n, ""
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// canonicalID entfernt ein ".0"-Suffix, wie es numerische CSV-Exporte erzeugen.
func canonicalID(s string) string {
	if head, ok := strings.CutSuffix(s, ".0"); ok && head != "" {
		if _, err := strconv.ParseUint(head, 10, 64); err == nil {
			return head
		}
	}
	return s
}

type row struct {
	line   int
	index  map[string]int
	fields []string
}

func (r row) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

func (r row) required(col string) (string, error) {
	v := strings.TrimSpace(r.get(col))
	if v == "" {
		return "", r.errorf("missing required value %q", col)
	}
	return v, nil
}

func (r row) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", r.line, fmt.Sprintf(format, args...))
}

// readTable öffnet eine Quelle, prüft die Pflichtspalten und ruft fn für
// jede Datenzeile auf. Jeder Fehler wird als SourceError gemeldet.
func readTable(ctx context.Context, p providers.Provider, table string, fn func(row) error) error {
	rc, err := p.Open(ctx, table)
	if err != nil {
		return &SourceError{Source: table, Err: err}
	}
	defer rc.Close()

	cr := csv.NewReader(rc)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty file")
		}
		return &SourceError{Source: table, Err: err}
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		index[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, col := range requiredColumns[table] {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SourceError{Source: table, Err: fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &SourceError{Source: table, Err: err}
		}
		line, _ := cr.FieldPos(0)
		if err := fn(row{line: line, index: index, fields: rec}); err != nil {
			return &SourceError{Source: table, Err: err}
		}
	}
}

package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/The-Policy-Posse/Network-Graph-1/config"
	"github.com/The-Policy-Posse/Network-Graph-1/models"
	"github.com/The-Policy-Posse/Network-Graph-1/providers"
)

// Result ist das Ergebnis eines erfolgreichen Pipeline-Laufs.
type Result struct {
	Snapshot *models.Snapshot
	Quality  *QualityReport
}

// Pipeline führt Laden, Joins, Graphaufbau und Aggregation nacheinander aus.
// Jeder Lauf arbeitet ausschließlich auf eigenen Datenstrukturen.
type Pipeline struct {
	Options  config.RunOptions
	Logger   *zap.Logger
	Now      func() time.Time
	NewRunID func() string
}

// NewPipeline erstellt eine Pipeline mit den gegebenen Parametern.
func NewPipeline(opts config.RunOptions, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		Options:  opts,
		Logger:   logger.Named("pipeline"),
		Now:      time.Now,
		NewRunID: uuid.NewString,
	}
}

// Run lädt die Quellen über den Provider und baut daraus einen Snapshot.
func (p *Pipeline) Run(ctx context.Context, src providers.Provider) (*Result, error) {
	res, err := p.run(ctx, src)
	if err != nil {
		pipelineRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	pipelineRuns.WithLabelValues("success").Inc()
	lastCollaborations.Set(float64(len(res.Snapshot.Collaborations)))
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, src providers.Provider) (*Result, error) {
	if err := p.Options.Validate(); err != nil {
		return nil, err
	}
	log := p.Logger.With(zap.String("provider", src.Name()))
	log.Info("Lade Eingabedaten")

	q := NewQualityReport()
	tables, err := LoadTables(ctx, src, q)
	if err != nil {
		log.Error("Eingabedaten konnten nicht geladen werden", zap.Error(err))
		return nil, err
	}
	log.Info("Eingabedaten geladen",
		zap.Int("bills", len(tables.Bills)),
		zap.Int("legislators", len(tables.Legislators)),
		zap.Int("sponsorships", len(tables.Sponsorships)),
		zap.Int("policies", len(tables.Policies)),
		zap.Int("policy_links", len(tables.PolicyLinks)),
	)

	snap, err := p.Build(tables, q)
	p.reportQuality(q)
	if err != nil {
		log.Error("Snapshot konnte nicht erstellt werden", zap.Error(err))
		return nil, err
	}
	return &Result{Snapshot: snap, Quality: q}, nil
}

// Build führt Join, Projektion, Graphaufbau und Aggregation auf bereits geladenen Tabellen aus.
func (p *Pipeline) Build(t *Tables, q *QualityReport) (*models.Snapshot, error) {
	joined := FilterAndJoin(t, p.Options.TargetCongress)
	bills := ProjectBills(joined.Rows)
	legislators := ProjectLegislators(t.Legislators)

	known := make(map[string]struct{}, len(t.Legislators))
	for _, l := range t.Legislators {
		known[l.ID] = struct{}{}
	}
	collabs := BuildCollaborations(GraphInput{
		Bills:        joined.Bills,
		Sponsorships: t.Sponsorships,
		KnownMembers: known,
	}, p.Options.MinCollaborations, q)
	active := AttachMetrics(legislators, collabs)

	snap, err := Assemble(AssembleInput{
		Bills:             joined.Bills,
		BillRows:          bills,
		Legislators:       active,
		Collaborations:    collabs,
		Policies:          ProjectPolicies(t.Policies),
		MinCollaborations: p.Options.MinCollaborations,
		RunID:             p.NewRunID(),
		GeneratedAt:       p.Now(),
	})
	if err != nil {
		return nil, err
	}

	p.Logger.Info("Snapshot erstellt",
		zap.String("run_id", snap.Metadata.RunID),
		zap.Int("target_congress", p.Options.TargetCongress),
		zap.Int("bills", snap.Metadata.TotalBills),
		zap.Int("collaborations", snap.Metadata.TotalCollaborations),
		zap.Int("legislators", snap.Metadata.TotalLegislators),
	)
	for _, pc := range TopPolicies(snap.Metadata.Policies.Counts, 5) {
		p.Logger.Info("Top-Policy", zap.String("policy", pc.Name), zap.Int("bills", pc.Count))
	}
	return snap, nil
}

func (p *Pipeline) reportQuality(q *QualityReport) {
	for _, kind := range q.Kinds() {
		n := q.Count(kind)
		qualityAnomalies.WithLabelValues(string(kind)).Add(float64(n))
		p.Logger.Warn("Datenqualität", zap.String("kind", string(kind)), zap.Int("count", n))
	}
}

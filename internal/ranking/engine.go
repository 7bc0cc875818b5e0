package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/openreel/crewdeck/internal/engagement"
	"github.com/openreel/crewdeck/internal/project"
	"github.com/openreel/crewdeck/internal/reward"
	"github.com/openreel/crewdeck/internal/stats"
	"github.com/openreel/crewdeck/internal/tracing"
)

// DefaultTopN is the number of top-scored projects whose owners receive a
// rank boost each run.
const DefaultTopN = 10

// rewardOrigin labels swallowed ledger failures caused by ranking runs.
const rewardOrigin = "ranking_recompute"

// FeedInvalidator drops cached feed orderings after a run rewrites scores.
type FeedInvalidator interface {
	// InvalidateFeed removes cached feed entries.
	InvalidateFeed(ctx context.Context) error
}

// Config configures the ranking engine.
type Config struct {
	// TopN is how many top-scored projects earn their owner a rank boost.
	TopN int
	// Logger for run activity.
	Logger *slog.Logger
	// Metrics for run observability; nil disables recording.
	Metrics *Metrics
	// Now supplies the current time; defaults to time.Now. Tests override it.
	Now func() time.Time
}

// Engine recomputes fairness-adjusted scores for the whole project
// population. Stateless between runs; all collaborators are injected.
type Engine struct {
	config      Config
	projects    project.Repository
	engagements engagement.Repository
	scores      ScoreStore
	stats       StatsStore
	ledger      *reward.Ledger
	feed        FeedInvalidator
}

// NewEngine creates a ranking engine. feed may be nil when no feed cache
// is configured.
func NewEngine(
	config Config,
	projects project.Repository,
	engagements engagement.Repository,
	scores ScoreStore,
	statsStore StatsStore,
	ledger *reward.Ledger,
	feed FeedInvalidator,
) *Engine {
	if config.TopN <= 0 {
		config.TopN = DefaultTopN
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Engine{
		config:      config,
		projects:    projects,
		engagements: engagements,
		scores:      scores,
		stats:       statsStore,
		ledger:      ledger,
		feed:        feed,
	}
}

// Recompute runs the full two-pass scoring over every project, upserts one
// score row per project, measures engagement inequality, grants top-N rank
// boosts, and overwrites the singleton platform stats row. Reward and feed
// cache failures are soft; storage failures abort the run.
func (e *Engine) Recompute(ctx context.Context) (result *PlatformStats, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "ranking.recompute")
	defer func() { endSpan(err) }()

	start := e.config.Now()
	e.config.Logger.Info("starting ranking recompute")

	projects, err := e.projects.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	tracing.SetAttributes(ctx, attribute.Int("ranking.projects", len(projects)))

	// First pass: collect raw engagement, exposure, and freshness per project.
	rawEngagement := make(map[string]float64, len(projects))
	exposure := make(map[string]float64, len(projects))
	freshness := make(map[string]float64, len(projects))
	owners := make(map[string]string, len(projects))
	for _, p := range projects {
		engagements, err := e.engagements.ListByProject(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list engagements for project %s: %w", p.ID, err)
		}
		var sum float64
		for _, en := range engagements {
			sum += en.Weight
		}
		rawEngagement[p.ID] = sum
		exposure[p.ID] = float64(p.Impressions)
		freshness[p.ID] = Freshness(p.CreatedAt, start)
		owners[p.ID] = p.CreatorID
	}

	// Second pass: normalize across the population and compose final scores.
	normEngagement := MinMaxNormalize(rawEngagement)
	normExposure := MinMaxNormalize(exposure)

	computedAt := start.UTC()
	scores := make([]Score, 0, len(projects))
	for _, p := range projects {
		s := Score{
			ProjectID:    p.ID,
			Engagement:   normEngagement[p.ID],
			Freshness:    freshness[p.ID],
			Diversity:    DiversityPlaceholder,
			Underexposed: Clamp01(1.0 - normExposure[p.ID]),
			ComputedAt:   computedAt,
		}
		s.Final = FinalScore(s.Engagement, s.Freshness, s.Underexposed, s.Diversity)
		scores = append(scores, s)
	}

	upserts := stats.NewUpsertStats()
	for _, s := range scores {
		inserted, err := e.scores.UpsertScore(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert score for project %s: %w", s.ProjectID, err)
		}
		upserts.Record(inserted)
	}

	rawValues := make([]float64, 0, len(projects))
	for _, p := range projects {
		rawValues = append(rawValues, rawEngagement[p.ID])
	}
	gini := Gini(rawValues)

	var avgScore float64
	if len(scores) > 0 {
		var sum float64
		for _, s := range scores {
			sum += s.Final
		}
		avgScore = sum / float64(len(scores))
	}

	e.grantTopBoosts(ctx, scores, owners)

	distinctCreators := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		distinctCreators[p.CreatorID] = struct{}{}
	}

	platformStats := PlatformStats{
		CreatorCount:   len(distinctCreators),
		ProjectCount:   len(projects),
		AvgFinalScore:  avgScore,
		EngagementGini: gini,
		ComputedAt:     computedAt,
	}
	if err := e.stats.UpsertStats(ctx, platformStats); err != nil {
		return nil, fmt.Errorf("failed to upsert platform stats: %w", err)
	}

	if e.feed != nil {
		if err := e.feed.InvalidateFeed(ctx); err != nil {
			// Stale cache entries expire on their own; the recompute still
			// succeeded.
			e.config.Logger.Error("failed to invalidate feed cache", "error", err)
			if e.config.Metrics != nil {
				e.config.Metrics.IncFeedInvalidationFailures()
			}
		}
	}

	if e.config.Metrics != nil {
		e.config.Metrics.ObserveRun(platformStats)
	}

	upserts.LogSummary(e.config.Logger, "rank_scores")
	e.config.Logger.Info("ranking recompute completed",
		"projects", len(projects),
		"gini", gini,
		"avg_score", avgScore,
		"duration_seconds", time.Since(start).Seconds())

	return &platformStats, nil
}

// grantTopBoosts rewards the owners of the top-N projects by final score.
// Ledger failures are swallowed so score and stats persistence always win.
func (e *Engine) grantTopBoosts(ctx context.Context, scores []Score, owners map[string]string) {
	if e.ledger == nil || len(scores) == 0 {
		return
	}

	ranked := make([]Score, len(scores))
	copy(ranked, scores)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Final != ranked[j].Final {
			return ranked[i].Final > ranked[j].Final
		}
		return ranked[i].ProjectID < ranked[j].ProjectID
	})

	topN := e.config.TopN
	if topN > len(ranked) {
		topN = len(ranked)
	}

	for _, s := range ranked[:topN] {
		owner := owners[s.ProjectID]
		if owner == "" {
			continue
		}
		e.ledger.GrantSoft(ctx, owner, reward.ReasonRankBoost, reward.RankBoostValue, rewardOrigin)
	}
}

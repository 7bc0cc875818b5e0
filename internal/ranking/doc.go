// Package ranking computes fairness-adjusted discovery scores for the
// whole project population.
//
// Every run is a full recomputation: raw engagement and exposure are
// collected for each project, min-max normalized across the population,
// combined with an inverse-age freshness signal into a fixed convex
// weighting, and upserted wholesale. The run also measures engagement
// inequality with a Gini coefficient, grants a rank boost to the owners of
// the top-scored projects, and overwrites the singleton platform stats row.
//
// The engine holds no state between runs; staleness is bounded by the
// interval between recomputations, and the cost is O(projects +
// engagements) per run.
package ranking

// Package pipeline orchestrates one run across every configured profile:
// acquisition, relevance filtering, sync, and a single aggregate
// notification at the end.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"arxivsync/internal/acquisition"
	"arxivsync/internal/config"
	"arxivsync/internal/models"
	"arxivsync/internal/notify"
	"arxivsync/internal/relevance"
	"arxivsync/internal/relevance/keywords"
	"arxivsync/internal/sync"
)

// Orchestrator runs every configured profile's pipeline in sequence (each
// profile's Acquisition -> Filter-and-Rank -> Sync is itself a linear
// pipeline, per the single-threaded cooperative model) and emits one
// aggregate notification after every profile's sync has returned.
type Orchestrator struct {
	cfg    *config.Config
	acq    *acquisition.Engine
	syncer *sync.Engine
	notifier *notify.Notifier
	logger *slog.Logger
}

// NewOrchestrator builds an orchestrator bound to the application's
// shared engines.
func NewOrchestrator(cfg *config.Config, acq *acquisition.Engine, syncer *sync.Engine, notifier *notify.Notifier, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, acq: acq, syncer: syncer, notifier: notifier, logger: logger}
}

// RunResult summarizes one full orchestration pass for the caller.
type RunResult struct {
	Deltas []models.SyncDelta
	Notified bool
}

// Run fetches recent papers for every configured profile, filters and
// ranks them, syncs the survivors, and emits one aggregate notification.
func (o *Orchestrator) Run(ctx context.Context, days int) (RunResult, error) {
	runID := uuid.NewString()
	logger := o.logger.With(slog.String("run_id", runID))

	var inputs []sync.ProfileInput
	links := make(map[string]notify.ProfileLink)

	for _, profile := range o.cfg.Profiles {
		spec := resolveKeywordSpec(profile)

		categories := profile.Categories
		if profile.Preset != "" {
			if preset, ok := keywords.Presets[profile.Preset]; ok {
				categories = append(categories, preset.Categories...)
			}
		}

		papers, err := o.acq.GetRecent(ctx, days, 0, categories)
		if err != nil {
			logger.Warn("pipeline: acquisition failed for profile",
				slog.String("profile_id", profile.ProfileID), slog.String("error", err.Error()))
			continue
		}

		ranked, _, stats := relevance.FilterAndRank(papers, relevance.FilterOptions{
			Required:                    spec.Required,
			RequiredFuzzyMatch:          spec.RequiredFuzzyMatch,
			RequiredSimilarityThreshold: spec.RequiredSimilarityThreshold,
			Interest:                    spec.Interest(),
			Exclude:                     spec.Exclude,
			TierWeights:                 spec.TierWeights(),
			MinScore:                    0,
			Advanced:                    profile.Advanced,
			ScoreWeights:                relevance.DefaultScoreWeights(),
		})

		logger.Info("pipeline: profile scored",
			slog.String("profile_id", profile.ProfileID),
			slog.Int("total", stats.Total), slog.Int("passed", stats.Passed))

		inputs = append(inputs, sync.ProfileInput{
			ProfileID:     profile.ProfileID,
			DisplayName:   profile.DisplayName,
			Base:          o.cfg.Feishu.BitableAppToken,
			BatchSize:     o.cfg.Feishu.BatchSize,
			SyncThreshold: profile.SyncThreshold,
			Candidates:    ranked,
		})
	}

	deltas, err := o.syncer.SyncAll(ctx, inputs)
	if err != nil {
		return RunResult{}, err
	}

	for _, d := range deltas {
		links[d.ProfileID] = notify.ProfileLink{Base: o.cfg.Feishu.BitableAppToken, TableID: d.TableID}
	}

	notified, err := o.notifier.Notify(ctx, deltas, links)
	if err != nil {
		logger.Warn("pipeline: notification failed", slog.String("error", err.Error()))
	}

	return RunResult{Deltas: deltas, Notified: notified}, nil
}

func resolveKeywordSpec(profile config.ProfileConfig) models.KeywordSpec {
	rawInterest := profile.RawInterest
	required := profile.Required
	exclude := profile.Exclude

	if profile.Preset != "" {
		if preset, ok := keywords.Presets[profile.Preset]; ok {
			rawInterest = append(append([]string{}, rawInterest...), preset.Keywords...)
		}
	}

	threshold := profile.RequiredSimilarityThreshold
	if threshold == 0 {
		threshold = 0.8
	}

	return models.KeywordSpec{
		RawInterest:                 rawInterest,
		Exclude:                     exclude,
		Required:                    required,
		RequiredFuzzyMatch:          profile.RequiredFuzzyMatch,
		RequiredSimilarityThreshold: threshold,
	}
}

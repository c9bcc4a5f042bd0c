package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillvet/skillvet/pkg/presenter"
	"github.com/skillvet/skillvet/pkg/report"
	"github.com/skillvet/skillvet/pkg/scorer"
	"github.com/skillvet/skillvet/pkg/skill"
	"github.com/skillvet/skillvet/pkg/store"
)

var batchEvaluateCmd = &cobra.Command{
	Use:   "batch-evaluate",
	Short: "Evaluate all cached skills and analyze the score distribution",
	Long: `Score every crawled skill that has no cached evaluation yet, persisting
each result as it completes so an interrupted run can resume. Prints a
distribution analysis over all stored results when done.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		limit, _ := cmd.Flags().GetInt("limit")
		force, _ := cmd.Flags().GetBool("force")

		s, err := openStore(ctx)
		if err != nil {
			presenter.Error(err, "Failed to open skill database")
			os.Exit(1)
		}
		defer s.Close()

		docs, err := s.ListSkills(ctx)
		if err != nil {
			presenter.Error(err, "Failed to list cached skills")
			os.Exit(1)
		}
		if len(docs) == 0 {
			presenter.Warning("No cached skills. Run 'skillvet crawl' first.")
			os.Exit(1)
		}

		pending, skipped := selectPending(ctx, s, docs, force)
		if skipped > 0 {
			presenter.Info(fmt.Sprintf("Skipping %d already-evaluated skills", skipped))
		}
		if limit > 0 && len(pending) > limit {
			pending = pending[:limit]
		}

		failures := 0
		if len(pending) > 0 {
			svc, cfg, err := newService()
			if err != nil {
				presenter.Error(err, "Failed to configure LLM provider")
				os.Exit(1)
			}
			sc, err := scorer.New(svc)
			if err != nil {
				presenter.Error(err, "Failed to initialize scorer")
				os.Exit(1)
			}

			presenter.Info(fmt.Sprintf("Evaluating %d skills ...", len(pending)))
			failures = scoreAndStore(ctx, sc, s, pending, cfg.MaxConcurrent)
		}

		// Fold in previously stored results so the analysis covers the
		// whole cache, not just this run.
		evals, err := s.ListEvaluations(ctx, 0)
		if err != nil {
			presenter.Error(err, "Failed to load stored evaluations")
			os.Exit(1)
		}
		all := make([]*scorer.Result, 0, len(evals))
		for _, eval := range evals {
			if eval.Score != nil {
				all = append(all, eval.Score)
			}
		}

		os.Stdout.WriteString(report.BatchAnalysis(all))

		if failures > 0 {
			presenter.Warning(fmt.Sprintf("%d skills could not be evaluated", failures))
			os.Exit(1)
		}
	},
}

// scoreAndStore evaluates the pending skills and persists each result as it
// arrives. It returns the number of skills that could not be evaluated or
// saved; any non-zero count makes the command exit with a failure status.
func scoreAndStore(ctx context.Context, sc *scorer.Scorer, s *store.Store, pending []skill.Document, maxConcurrent int) int {
	failures := 0
	for _, item := range sc.ScoreAll(ctx, pending, maxConcurrent) {
		if item.Err != nil {
			presenter.Warning(fmt.Sprintf("%s: %v", item.Document.Key, item.Err))
			failures++
			continue
		}
		if err := s.SaveScore(ctx, item.Document.Key, item.Result); err != nil {
			presenter.Warning(fmt.Sprintf("%s: %v", item.Document.Key, err))
			failures++
		}
	}
	return failures
}

// selectPending filters out skills that already have a stored quality score
// unless force re-evaluation is requested.
func selectPending(ctx context.Context, s *store.Store, docs []skill.Document, force bool) ([]skill.Document, int) {
	if force {
		return docs, 0
	}
	var pending []skill.Document
	skipped := 0
	for _, doc := range docs {
		eval, err := s.GetEvaluation(ctx, doc.Key)
		if err == nil && eval.Score != nil {
			skipped++
			continue
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			presenter.Warning(fmt.Sprintf("%s: %v", doc.Key, err))
		}
		pending = append(pending, doc)
	}
	return pending, skipped
}

func init() {
	batchEvaluateCmd.Flags().Int("limit", 0, "Evaluate at most this many skills (0 = all)")
	batchEvaluateCmd.Flags().Bool("force", false, "Re-evaluate skills that already have cached results")
}

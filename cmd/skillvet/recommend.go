package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillvet/skillvet/pkg/presenter"
	"github.com/skillvet/skillvet/pkg/ranker"
	"github.com/skillvet/skillvet/pkg/relevance"
	"github.com/skillvet/skillvet/pkg/report"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend skills for your tech stack and project type",
	Long: `Match the cached evaluation results against your project profile in a
single batched LLM request and print a tiered recommendation report.
Run 'skillvet crawl' and 'skillvet batch-evaluate' first to populate
the cache.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		stack, _ := cmd.Flags().GetString("stack")
		projectType, _ := cmd.Flags().GetString("type")
		notes, _ := cmd.Flags().GetString("notes")
		minQuality, _ := cmd.Flags().GetFloat64("min-quality")
		showSkip, _ := cmd.Flags().GetBool("show-skip")
		asJSON, _ := cmd.Flags().GetBool("json")
		output, _ := cmd.Flags().GetString("output")

		profile := relevance.Profile{
			TechStack:   splitList(stack),
			ProjectType: projectType,
			Notes:       notes,
		}

		s, err := openStore(ctx)
		if err != nil {
			presenter.Error(err, "Failed to open skill database")
			os.Exit(1)
		}
		defer s.Close()

		evals, err := s.ListEvaluations(ctx, minQuality)
		if err != nil {
			presenter.Error(err, "Failed to load cached evaluations")
			os.Exit(1)
		}
		if len(evals) == 0 {
			presenter.Warning("No evaluated skills in the database. Run 'skillvet crawl' and 'skillvet batch-evaluate' first.")
			os.Exit(1)
		}

		candidates := make([]relevance.Candidate, 0, len(evals))
		for _, eval := range evals {
			candidates = append(candidates, relevance.Candidate{
				Name:          eval.SkillKey,
				WeightedScore: eval.Score.WeightedScore,
				Summary:       eval.Score.Summary,
			})
		}

		svc, _, err := newService()
		if err != nil {
			presenter.Error(err, "Failed to configure LLM provider")
			os.Exit(1)
		}

		presenter.Info("Matching skills against your project ...")
		scores, err := relevance.NewMatcher(svc).Match(ctx, profile, candidates)
		if err != nil {
			presenter.Error(err, "Relevance matching failed")
			os.Exit(1)
		}

		inputs := make([]ranker.Input, 0, len(evals))
		for _, eval := range evals {
			sc := scores[eval.SkillKey]
			inputs = append(inputs, ranker.Input{
				Name:          eval.SkillKey,
				Title:         eval.Score.SkillName,
				URL:           eval.Score.URL,
				WeightedScore: eval.Score.WeightedScore,
				Verdict:       string(eval.Score.Verdict),
				Relevance:     sc.Relevance,
				Reason:        sc.Reason,
			})
		}
		recs := ranker.Rank(inputs)

		content := report.Recommendations(profile, recs, showSkip)
		if asJSON {
			data, err := json.MarshalIndent(recs, "", "  ")
			if err != nil {
				presenter.Error(err, "Failed to encode results")
				os.Exit(1)
			}
			content = string(data)
		}

		if err := emit(content, output); err != nil {
			presenter.Error(err, "Failed to write report")
			os.Exit(1)
		}
	},
}

func init() {
	recommendCmd.Flags().StringP("stack", "s", "", "Tech stack, e.g. \"Go, PostgreSQL, gRPC\"")
	recommendCmd.Flags().StringP("type", "t", "", "Project type, e.g. \"backend API\"")
	recommendCmd.Flags().StringP("notes", "n", "", "Extra notes about the project")
	recommendCmd.Flags().Float64("min-quality", 50, "Minimum cached quality score to consider")
	recommendCmd.Flags().Bool("show-skip", false, "Also list skills in the skip tier")
	recommendCmd.Flags().Bool("json", false, "Output the results as JSON")
	recommendCmd.Flags().StringP("output", "o", "", "Save the report to a file")
	recommendCmd.MarkFlagRequired("stack")
	recommendCmd.MarkFlagRequired("type")
}

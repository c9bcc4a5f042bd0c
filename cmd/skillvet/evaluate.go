package main

import (
	"encoding/json"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/skillvet/skillvet/pkg/presenter"
	"github.com/skillvet/skillvet/pkg/report"
	"github.com/skillvet/skillvet/pkg/scorer"
	"github.com/skillvet/skillvet/pkg/skill"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <path/to/SKILL.md> [more paths...]",
	Short: "Evaluate the quality of skill documents",
	Long: `Score one or more SKILL.md files on the five-dimension quality rubric
and print a report with the weighted score and verdict for each.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		asJSON, _ := cmd.Flags().GetBool("json")
		output, _ := cmd.Flags().GetString("output")

		svc, _, err := newService()
		if err != nil {
			presenter.Error(err, "Failed to configure LLM provider")
			os.Exit(1)
		}
		sc, err := scorer.New(svc)
		if err != nil {
			presenter.Error(err, "Failed to initialize scorer")
			os.Exit(1)
		}

		var failures *multierror.Error
		var results []*scorer.Result
		for _, path := range args {
			doc, err := skill.Load(path)
			if err != nil {
				presenter.Error(err, "Failed to load "+path)
				failures = multierror.Append(failures, err)
				continue
			}

			presenter.Info("Evaluating " + doc.Key + " ...")
			result, err := sc.Score(ctx, doc)
			if err != nil {
				presenter.Error(err, "Evaluation of "+doc.Key+" failed")
				failures = multierror.Append(failures, err)
				continue
			}
			results = append(results, result)
		}

		if len(results) > 0 {
			content := renderQuality(results, asJSON)
			if err := emit(content, output); err != nil {
				presenter.Error(err, "Failed to write report")
				os.Exit(1)
			}
		}
		if failures.ErrorOrNil() != nil {
			os.Exit(1)
		}
	},
}

func renderQuality(results []*scorer.Result, asJSON bool) string {
	if asJSON {
		var data []byte
		var err error
		if len(results) == 1 {
			data, err = json.MarshalIndent(results[0], "", "  ")
		} else {
			data, err = json.MarshalIndent(results, "", "  ")
		}
		if err != nil {
			presenter.Error(err, "Failed to encode results")
			os.Exit(1)
		}
		return string(data)
	}

	content := ""
	for _, result := range results {
		content += report.Quality(result) + "\n"
	}
	return content
}

func init() {
	evaluateCmd.Flags().Bool("json", false, "Output the results as JSON")
	evaluateCmd.Flags().StringP("output", "o", "", "Save the report to a file")
}

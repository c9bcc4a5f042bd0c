package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillvet/skillvet/pkg/presenter"
	"github.com/skillvet/skillvet/pkg/report"
	"github.com/skillvet/skillvet/pkg/security"
	"github.com/skillvet/skillvet/pkg/skill"
)

var scanCmd = &cobra.Command{
	Use:   "scan <path/to/SKILL.md>",
	Short: "Scan a skill document for security risks",
	Long: `Run the pattern and model security detectors over a SKILL.md file and
print the merged risk level, recommendation, and findings.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		doc, err := skill.Load(args[0])
		if err != nil {
			presenter.Error(err, "Failed to load skill document")
			os.Exit(1)
		}

		svc, _, err := newService()
		if err != nil {
			presenter.Error(err, "Failed to configure LLM provider")
			os.Exit(1)
		}

		presenter.Info("Scanning " + doc.Key + " ...")
		result, err := security.NewScanner(svc).Scan(ctx, doc)
		if err != nil {
			presenter.Error(err, "Security scan failed")
			os.Exit(1)
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		output, _ := cmd.Flags().GetString("output")

		content := report.Security(result)
		if asJSON {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				presenter.Error(err, "Failed to encode result")
				os.Exit(1)
			}
			content = string(data)
		}

		if err := emit(content, output); err != nil {
			presenter.Error(err, "Failed to write report")
			os.Exit(1)
		}

		if result.Recommendation == security.RecommendationReject {
			os.Exit(2)
		}
	},
}

func init() {
	scanCmd.Flags().Bool("json", false, "Output the result as JSON")
	scanCmd.Flags().StringP("output", "o", "", "Save the report to a file")
}

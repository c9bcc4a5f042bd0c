package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/skillvet/skillvet/pkg/generator"
	"github.com/skillvet/skillvet/pkg/presenter"
	"github.com/skillvet/skillvet/pkg/report"
	"github.com/skillvet/skillvet/pkg/scorer"
	"github.com/skillvet/skillvet/pkg/skill"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new SKILL.md for a topic",
	Long: `Draft a high-quality SKILL.md for the given topic, optionally scoring
the draft against the quality rubric straight away.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		topic, _ := cmd.Flags().GetString("topic")
		stack, _ := cmd.Flags().GetString("stack")
		notes, _ := cmd.Flags().GetString("notes")
		output, _ := cmd.Flags().GetString("output")
		runEval, _ := cmd.Flags().GetBool("evaluate")

		svc, _, err := newService()
		if err != nil {
			presenter.Error(err, "Failed to configure LLM provider")
			os.Exit(1)
		}

		presenter.Info("Generating skill for topic: " + topic)
		content, err := generator.New(svc).Generate(ctx, generator.Request{
			Topic:     topic,
			TechStack: stack,
			Notes:     notes,
		})
		if err != nil {
			presenter.Error(err, "Generation failed")
			os.Exit(1)
		}

		if output != "" {
			if err := os.WriteFile(output, []byte(content), 0644); err != nil {
				presenter.Error(err, "Failed to save generated skill")
				os.Exit(1)
			}
			presenter.Success("Generated skill saved to " + output)
		} else {
			os.Stdout.WriteString(content + "\n")
		}

		if !runEval {
			return
		}

		sc, err := scorer.New(svc)
		if err != nil {
			presenter.Error(err, "Failed to initialize scorer")
			os.Exit(1)
		}

		presenter.Info("Evaluating generated skill ...")
		result, err := sc.Score(ctx, skill.New(topic, topic, content))
		if err != nil {
			presenter.Error(err, "Evaluation failed")
			os.Exit(1)
		}
		os.Stdout.WriteString(report.Quality(result))
	},
}

func init() {
	generateCmd.Flags().StringP("topic", "t", "", "Skill topic, e.g. \"database migration safety\"")
	generateCmd.Flags().StringP("stack", "s", "", "Tech stack the skill targets")
	generateCmd.Flags().StringP("notes", "n", "", "Extra requirements for the skill")
	generateCmd.Flags().StringP("output", "o", "", "Save the generated SKILL.md to a file")
	generateCmd.Flags().Bool("evaluate", false, "Score the generated skill immediately")
	generateCmd.MarkFlagRequired("topic")
}

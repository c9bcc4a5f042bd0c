package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillvet/skillvet/pkg/crawler"
	"github.com/skillvet/skillvet/pkg/presenter"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl GitHub repositories for skill documents",
	Long: `Fetch SKILL.md files from the configured skill sources and cache them in
the local database. Sources default to a set of public skill collections
and can be overridden with the 'sources' key in the config file.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			token = viper.GetString("github_token")
		}

		var sources []crawler.Source
		if err := viper.UnmarshalKey("sources", &sources); err != nil {
			presenter.Error(err, "Invalid 'sources' configuration")
			os.Exit(1)
		}

		s, err := openStore(ctx)
		if err != nil {
			presenter.Error(err, "Failed to open skill database")
			os.Exit(1)
		}
		defer s.Close()

		docs, err := crawler.New(ctx, token).Crawl(ctx, sources)
		if err != nil {
			presenter.Error(err, "Crawl failed")
			os.Exit(1)
		}
		if len(docs) == 0 {
			presenter.Warning("No skill documents found.")
			os.Exit(1)
		}

		var saveErrs *multierror.Error
		saved := 0
		for _, doc := range docs {
			if err := s.SaveSkill(ctx, doc); err != nil {
				saveErrs = multierror.Append(saveErrs, err)
				continue
			}
			saved++
		}

		presenter.Success(fmt.Sprintf("Cached %d skills in %s", saved, s.Path()))
		if err := saveErrs.ErrorOrNil(); err != nil {
			presenter.Error(err, "Some skills could not be saved")
			os.Exit(1)
		}
	},
}

func init() {
	crawlCmd.Flags().String("token", "", "GitHub token for higher API rate limits")
}

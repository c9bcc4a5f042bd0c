package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/skillvet/skillvet/pkg/llm"
	"github.com/skillvet/skillvet/pkg/presenter"
	"github.com/skillvet/skillvet/pkg/store"
)

// newService builds the LLM client from viper configuration.
func newService() (llm.Service, llm.Config, error) {
	cfg, err := llm.ConfigFromViper()
	if err != nil {
		return nil, cfg, err
	}
	svc, err := llm.NewService(cfg)
	if err != nil {
		return nil, cfg, err
	}
	return svc, cfg, nil
}

// openStore opens the skill database at the configured (or default) path.
func openStore(ctx context.Context) (*store.Store, error) {
	path := viper.GetString("db_path")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve home directory")
		}
		path = filepath.Join(home, ".skillvet", "skillvet.db")
	}
	return store.Open(ctx, path)
}

// emit prints content to stdout and optionally saves it to a file.
func emit(content, outputPath string) error {
	os.Stdout.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		os.Stdout.WriteString("\n")
	}
	if outputPath == "" {
		return nil
	}
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", outputPath)
	}
	presenter.Info("Report saved to " + outputPath)
	return nil
}

// splitList parses a comma-separated flag value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

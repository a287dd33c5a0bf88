package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/geraldfingburke/newsloom/internal/config"
	"github.com/geraldfingburke/newsloom/internal/models"
)

// loadSourcesFile reads a JSON array of sources from disk for the
// "seed-sources" command. Bias and LastFetchAt/CreatedAt on each entry are
// operator-supplied or left zero; the store upsert only cares about
// name/home_url/feed_url/bias.
func loadSourcesFile(path string) ([]models.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources file %s: %w", path, err)
	}
	var sources []models.Source
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("parsing sources file %s: %w", path, err)
	}
	return sources, nil
}

// loadConfigOnly loads configuration without opening the store, for the
// "config" command.
func loadConfigOnly() (*config.Config, error) {
	return config.Load()
}

// config.go -- optional JSONC defaults file for mcdbmake
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// buildConfig holds the subset of mcdbmake's flags that are also
// accepted from a defaults file, so repeated invocations against the
// same input shape don't need to repeat --keyfield/--valfield/--comma
// on every command line.
type buildConfig struct {
	Tag      uint8  `json:"tag"`
	Comma    string `json:"comma"`
	Comment  string `json:"comment"`
	KeyField int    `json:"keyfield"`
	ValField int    `json:"valfield"`
}

// loadBuildConfig reads a JSONC (JSON-with-comments) defaults file. A
// missing file is not an error; it just means no defaults override the
// flag package's own defaults.
func loadBuildConfig(path string) (buildConfig, error) {
	var cfg buildConfig

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("mcdbmake: read %s: %w", path, err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return cfg, fmt.Errorf("mcdbmake: %s: invalid JSONC: %w", path, err)
	}

	if err := json.Unmarshal(std, &cfg); err != nil {
		return cfg, fmt.Errorf("mcdbmake: %s: invalid JSON: %w", path, err)
	}

	return cfg, nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	models "vantage/internal/domain/models/orgtree"
)

// readCompany loads a hierarchy file. Files ending in .json are decoded as
// JSON, everything else as YAML.
func readCompany(path string) (*models.Company, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var company models.Company
	if isJSON(path) {
		err = json.Unmarshal(data, &company)
	} else {
		err = yaml.Unmarshal(data, &company)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if company.ID == 0 {
		return nil, fmt.Errorf("parse %s: company id is required", path)
	}
	return &company, nil
}

// writeCompany writes a hierarchy in the format implied by path
func writeCompany(path string, company *models.Company) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(company, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(company)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

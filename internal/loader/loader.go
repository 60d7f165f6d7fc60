package loader

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/qninhdt/generals-draft/server/internal/cards"
	"github.com/qninhdt/generals-draft/server/internal/rules"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var defaults embed.FS

var ErrEmptyTable = errors.New("rule table has no categories")

// catalogEntry mirrors one element of generalList in the catalog file
type catalogEntry struct {
	GeneralName string `json:"generalName" yaml:"generalName"`
	EnglishName string `json:"englishName" yaml:"englishName"`
	Camp        string `json:"camp" yaml:"camp"`
	Role        string `json:"role" yaml:"role"`
	BaseScore   int    `json:"baseScore" yaml:"baseScore"`
}

type catalogFile struct {
	GeneralList []catalogEntry `json:"generalList" yaml:"generalList"`
}

// Bundle is everything the scoring engine needs at startup
type Bundle struct {
	Catalog *cards.Catalog
	Table   *rules.Table
}

// Load reads the catalog and rule table. Empty paths select the embedded
// defaults. Failures degrade instead of aborting: a bad catalog falls back
// to the default one, a bad rule table leaves Table nil (scoring disabled).
func Load(catalogPath, rulesPath string, logger *log.Logger) Bundle {
	if logger == nil {
		logger = log.Default()
	}

	var bundle Bundle

	catalog, err := LoadCatalog(catalogPath)
	if err != nil {
		logger.Printf("loader: catalog %q: %v; using default catalog", catalogPath, err)
		catalog, err = LoadCatalog("")
		if err != nil {
			logger.Printf("loader: default catalog: %v", err)
		}
	}
	bundle.Catalog = catalog

	table, err := LoadRules(rulesPath)
	if err != nil {
		logger.Printf("loader: rule table %q: %v; scoring disabled", rulesPath, err)
		return bundle
	}
	if err := ValidateTable(table); err != nil {
		logger.Printf("loader: %v", err)
	}
	bundle.Table = table

	logger.Printf("loader: %d cards, %d rules loaded", bundle.Catalog.Size(), table.Size())
	return bundle
}

// LoadCatalog reads a catalog file, or the embedded default when path is empty
func LoadCatalog(path string) (*cards.Catalog, error) {
	b, err := readSource(path, "defaults/catalog.yaml")
	if err != nil {
		return nil, err
	}
	return ParseCatalog(b)
}

// LoadRules reads a rule table file, or the embedded default when path is empty
func LoadRules(path string) (*rules.Table, error) {
	b, err := readSource(path, "defaults/rules.yaml")
	if err != nil {
		return nil, err
	}
	return ParseRules(b)
}

// ParseCatalog decodes a YAML or JSON catalog document
func ParseCatalog(b []byte) (*cards.Catalog, error) {
	var file catalogFile
	if err := decode(b, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	list := make([]cards.Card, 0, len(file.GeneralList))
	for _, entry := range file.GeneralList {
		list = append(list, cards.Card{
			Name:        entry.GeneralName,
			EnglishName: entry.EnglishName,
			Camp:        cards.Camp(entry.Camp),
			Role:        cards.Role(entry.Role),
			BaseValue:   entry.BaseScore,
		})
	}
	return cards.NewCatalog(list)
}

// ParseRules decodes a YAML or JSON rule table. Expression clauses are
// compiled by ValidateTable; until then they compile on each evaluation.
func ParseRules(b []byte) (*rules.Table, error) {
	var table rules.Table
	if err := decode(b, &table); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}

	present := 0
	for _, cat := range table.Categories() {
		if cat.Rules != nil {
			present++
		}
	}
	if present == 0 {
		return nil, ErrEmptyTable
	}

	return &table, nil
}

// readSource loads path from disk, or the named embedded file when path is empty
func readSource(path, fallback string) ([]byte, error) {
	if path == "" {
		return defaults.ReadFile(fallback)
	}
	return os.ReadFile(path)
}

// decode accepts JSON documents as-is and everything else as YAML
func decode(b []byte, out interface{}) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return json.Unmarshal(trimmed, out)
	}
	return yaml.Unmarshal(b, out)
}

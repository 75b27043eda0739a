package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"welltrend/internal/model"
)

// Fixture is a YAML document of reference data and sample points.
type Fixture struct {
	Nodes        []FixtureNode  `yaml:"nodes"`
	Catalog      []FixtureEntry `yaml:"catalog"`
	FacilityTags []FixtureTag   `yaml:"facility_tags"`
	Live         []FixturePoint `yaml:"live"`
	Archive      []FixturePoint `yaml:"archive"`
}

type FixtureNode struct {
	NodeID      string `yaml:"node_id"`
	AssetID     string `yaml:"asset_id"`
	DeviceType  int    `yaml:"device_type"`
	GroupID     string `yaml:"group_id"`
	Application int    `yaml:"application"`
}

type FixtureEntry struct {
	DeviceType   int    `yaml:"device_type"`
	Address      int    `yaml:"address"`
	StandardType *int   `yaml:"standard_type"`
	Description  string `yaml:"description"`
	PhraseID     int    `yaml:"phrase_id"`
	UnitType     int    `yaml:"unit_type"`
}

type FixtureTag struct {
	GroupID      string `yaml:"group_id"`
	Address      int    `yaml:"address"`
	StandardType *int   `yaml:"standard_type"`
	Description  string `yaml:"description"`
	UnitType     int    `yaml:"unit_type"`
}

type FixturePoint struct {
	NodeID    string    `yaml:"node_id"`
	Address   int       `yaml:"address"`
	Timestamp time.Time `yaml:"timestamp"`
	Value     float64   `yaml:"value"`
}

// LoadFixture reads a fixture document from path.
func LoadFixture(path string) (Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, err
	}
	f, err := ParseFixture(b)
	if err != nil {
		return Fixture{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseFixture decodes a fixture document.
func ParseFixture(b []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	for i, n := range f.Nodes {
		if n.NodeID == "" {
			return Fixture{}, fmt.Errorf("fixture node %d: node_id is required", i)
		}
	}
	return f, nil
}

// Seed writes a fixture in one transaction. Nodes are upserted; every other
// row is appended.
func (d *DB) Seed(ctx context.Context, f Fixture) error {
	return d.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, n := range f.Nodes {
			row := model.Node{
				NodeID:      n.NodeID,
				AssetID:     optional(n.AssetID),
				DeviceType:  n.DeviceType,
				GroupID:     n.GroupID,
				Application: n.Application,
			}
			if err := tx.Save(&row).Error; err != nil {
				return fmt.Errorf("seed node %s: %w", n.NodeID, err)
			}
		}
		if len(f.Catalog) > 0 {
			rows := make([]model.CatalogEntry, 0, len(f.Catalog))
			for _, e := range f.Catalog {
				rows = append(rows, model.CatalogEntry{
					DeviceType:   e.DeviceType,
					Address:      e.Address,
					StandardType: e.StandardType,
					Description:  e.Description,
					PhraseID:     e.PhraseID,
					UnitType:     e.UnitType,
				})
			}
			if err := tx.CreateInBatches(rows, defaultBatchSize).Error; err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}
		}
		if len(f.FacilityTags) > 0 {
			rows := make([]model.FacilityTag, 0, len(f.FacilityTags))
			for _, t := range f.FacilityTags {
				rows = append(rows, model.FacilityTag{
					GroupID:      t.GroupID,
					Address:      t.Address,
					StandardType: t.StandardType,
					Description:  t.Description,
					UnitType:     t.UnitType,
				})
			}
			if err := tx.CreateInBatches(rows, defaultBatchSize).Error; err != nil {
				return fmt.Errorf("seed facility tags: %w", err)
			}
		}
		if err := insertLivePoints(ctx, tx, toLive(f.Live), defaultBatchSize); err != nil {
			return fmt.Errorf("seed live points: %w", err)
		}
		if err := insertArchivePoints(ctx, tx, toArchive(f.Archive), defaultBatchSize); err != nil {
			return fmt.Errorf("seed archive points: %w", err)
		}
		return nil
	})
}

func toLive(ps []FixturePoint) []model.LivePoint {
	out := make([]model.LivePoint, 0, len(ps))
	for _, p := range ps {
		out = append(out, model.LivePoint{NodeID: p.NodeID, Address: p.Address, Timestamp: p.Timestamp.UTC(), Value: p.Value})
	}
	return out
}

func toArchive(ps []FixturePoint) []model.ArchivePoint {
	out := make([]model.ArchivePoint, 0, len(ps))
	for _, p := range ps {
		out = append(out, model.ArchivePoint{NodeID: p.NodeID, Address: p.Address, Timestamp: p.Timestamp.UTC(), Value: p.Value})
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

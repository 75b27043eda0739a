package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"welltrend/internal/catalog"
	"welltrend/internal/model"
)

const defaultBatchSize = 500

// DB wraps the sqlite connection holding reference data and both point partitions.
type DB struct {
	ORM *gorm.DB
}

// Ping checks that the database answers.
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.ORM.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Open opens the SQLite database using GORM and runs migrations.
func Open(path string) (*DB, error) {
	g, err := openORM(path)
	if err != nil {
		return nil, err
	}
	if err := migrateORM(g); err != nil {
		_ = closeORM(g)
		return nil, err
	}
	return &DB{ORM: g}, nil
}

func (d *DB) Close() error { return closeORM(d.ORM) }

// PointRow mirrors a row of either point partition.
type PointRow struct {
	NodeID    string    `gorm:"column:node_id" json:"node_id"`
	Address   int       `gorm:"column:address" json:"address"`
	Timestamp time.Time `gorm:"column:timestamp" json:"timestamp"`
	Value     float64   `gorm:"column:value" json:"value"`
}

// Node returns the directory entry for nodeID. ok is false when it is unknown.
func (d *DB) Node(ctx context.Context, nodeID string) (catalog.Node, bool, error) {
	var rows []model.Node
	res := d.ORM.WithContext(ctx).Where("node_id = ?", nodeID).Limit(1).Find(&rows)
	if res.Error != nil {
		return catalog.Node{}, false, fmt.Errorf("lookup node %s: %w", nodeID, res.Error)
	}
	if len(rows) == 0 {
		return catalog.Node{}, false, nil
	}
	return fromModelNode(rows[0]), true, nil
}

// NodeIDForAsset maps an asset identifier to its node. ok is false when unknown.
func (d *DB) NodeIDForAsset(ctx context.Context, assetID string) (string, bool, error) {
	var ids []string
	err := d.ORM.WithContext(ctx).
		Model(&model.Node{}).
		Where("asset_id = ?", assetID).
		Limit(1).
		Pluck("node_id", &ids).Error
	if err != nil {
		return "", false, fmt.Errorf("lookup asset %s: %w", assetID, err)
	}
	if len(ids) == 0 {
		return "", false, nil
	}
	return ids[0], true, nil
}

// CatalogEntries returns the catalog rows declared for any of deviceTypes.
func (d *DB) CatalogEntries(ctx context.Context, deviceTypes []int) ([]catalog.Entry, error) {
	if len(deviceTypes) == 0 {
		return []catalog.Entry{}, nil
	}
	var rows []model.CatalogEntry
	if err := d.ORM.WithContext(ctx).
		Where("device_type IN ?", deviceTypes).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list catalog entries: %w", err)
	}
	out := make([]catalog.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromModelEntry(r))
	}
	return out, nil
}

// FacilityTags returns the overrides scoped to groupID.
func (d *DB) FacilityTags(ctx context.Context, groupID string) ([]catalog.Override, error) {
	if groupID == "" {
		return []catalog.Override{}, nil
	}
	var rows []model.FacilityTag
	if err := d.ORM.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list facility tags: %w", err)
	}
	out := make([]catalog.Override, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromModelTag(r))
	}
	return out, nil
}

// RecordedAddresses returns the distinct addresses with at least one point for
// nodeID in partition p.
func (d *DB) RecordedAddresses(ctx context.Context, p model.Partition, nodeID string) ([]int, error) {
	var addrs []int
	if err := d.ORM.WithContext(ctx).
		Table(p.Table()).
		Where("node_id = ?", nodeID).
		Distinct().
		Order("address").
		Pluck("address", &addrs).Error; err != nil {
		return nil, fmt.Errorf("recorded addresses (%s): %w", p, err)
	}
	return addrs, nil
}

// PartitionPoints returns the points of partition p for nodeID and addresses
// with start <= timestamp <= end, ordered by timestamp and address.
func (d *DB) PartitionPoints(ctx context.Context, p model.Partition, nodeID string, addresses []int, start, end time.Time) ([]PointRow, error) {
	if len(addresses) == 0 {
		return []PointRow{}, nil
	}
	var rows []PointRow
	if err := d.ORM.WithContext(ctx).
		Table(p.Table()).
		Select("node_id, address, timestamp, value").
		Where("node_id = ? AND address IN ? AND timestamp >= ? AND timestamp <= ?", nodeID, addresses, start.UTC(), end.UTC()).
		Order("timestamp, address").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("partition points (%s): %w", p, err)
	}
	return rows, nil
}

// InsertPoints appends rows to partition p. Timestamps are stored in UTC.
func (d *DB) InsertPoints(ctx context.Context, p model.Partition, rows []PointRow) error {
	switch p {
	case model.PartitionArchive:
		arr := make([]model.ArchivePoint, 0, len(rows))
		for _, r := range rows {
			arr = append(arr, model.ArchivePoint{NodeID: r.NodeID, Address: r.Address, Timestamp: r.Timestamp.UTC(), Value: r.Value})
		}
		return insertArchivePoints(ctx, d.ORM, arr, defaultBatchSize)
	default:
		arr := make([]model.LivePoint, 0, len(rows))
		for _, r := range rows {
			arr = append(arr, model.LivePoint{NodeID: r.NodeID, Address: r.Address, Timestamp: r.Timestamp.UTC(), Value: r.Value})
		}
		return insertLivePoints(ctx, d.ORM, arr, defaultBatchSize)
	}
}

func fromModelNode(n model.Node) catalog.Node {
	return catalog.Node{
		NodeID:      n.NodeID,
		AssetID:     derefString(n.AssetID),
		DeviceType:  n.DeviceType,
		GroupID:     n.GroupID,
		Application: catalog.Application(n.Application),
	}
}

func fromModelEntry(e model.CatalogEntry) catalog.Entry {
	return catalog.Entry{
		DeviceType:   e.DeviceType,
		Address:      e.Address,
		StandardType: derefType(e.StandardType),
		Description:  e.Description,
		PhraseID:     e.PhraseID,
		UnitType:     e.UnitType,
	}
}

func fromModelTag(t model.FacilityTag) catalog.Override {
	return catalog.Override{
		GroupID:      t.GroupID,
		Address:      t.Address,
		StandardType: derefType(t.StandardType),
		Description:  t.Description,
		UnitType:     t.UnitType,
	}
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefType(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

package model

import "time"

// LivePoint is a recent time-series sample.
// Table: point_values_live
type LivePoint struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	NodeID    string    `gorm:"column:node_id;uniqueIndex:ux_live_point"`
	Address   int       `gorm:"column:address;uniqueIndex:ux_live_point"`
	Timestamp time.Time `gorm:"column:timestamp;uniqueIndex:ux_live_point"`
	Value     float64   `gorm:"column:value"`
}

func (LivePoint) TableName() string { return "point_values_live" }

// ArchivePoint has the same shape as LivePoint but lives in the archive partition.
// Table: point_values_archive
type ArchivePoint struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	NodeID    string    `gorm:"column:node_id;uniqueIndex:ux_archive_point"`
	Address   int       `gorm:"column:address;uniqueIndex:ux_archive_point"`
	Timestamp time.Time `gorm:"column:timestamp;uniqueIndex:ux_archive_point"`
	Value     float64   `gorm:"column:value"`
}

func (ArchivePoint) TableName() string { return "point_values_archive" }

// Partition names a point table.
type Partition string

const (
	PartitionLive    Partition = "live"
	PartitionArchive Partition = "archive"
)

// Table returns the table backing the partition.
func (p Partition) Table() string {
	if p == PartitionArchive {
		return ArchivePoint{}.TableName()
	}
	return LivePoint{}.TableName()
}

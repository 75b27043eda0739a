package model

// Node is one production asset as registered in the node directory.
// AssetID is NULL for nodes not yet bound to an asset.
// Table: nodes
type Node struct {
	NodeID      string  `gorm:"column:node_id;primaryKey"`
	AssetID     *string `gorm:"column:asset_id;uniqueIndex"`
	DeviceType  int     `gorm:"column:device_type"`
	GroupID     string  `gorm:"column:group_id;index"`
	Application int     `gorm:"column:application"`
}

func (Node) TableName() string { return "nodes" }

// CatalogEntry is a built-in candidate register definition for a device type.
// StandardType is nullable; rows without one never become trend items.
type CatalogEntry struct {
	ID           uint   `gorm:"column:id;primaryKey;autoIncrement"`
	DeviceType   int    `gorm:"column:device_type;index"`
	Address      int    `gorm:"column:address"`
	StandardType *int   `gorm:"column:standard_type;index"`
	Description  string `gorm:"column:description"`
	PhraseID     int    `gorm:"column:phrase_id"`
	UnitType     int    `gorm:"column:unit_type"`
}

func (CatalogEntry) TableName() string { return "device_parameters" }

// FacilityTag redefines a register for every node of a device group.
type FacilityTag struct {
	ID           uint   `gorm:"column:id;primaryKey;autoIncrement"`
	GroupID      string `gorm:"column:group_id;index"`
	Address      int    `gorm:"column:address"`
	StandardType *int   `gorm:"column:standard_type"`
	Description  string `gorm:"column:description"`
	UnitType     int    `gorm:"column:unit_type"`
}

func (FacilityTag) TableName() string { return "facility_tags" }

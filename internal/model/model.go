package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Run{},
	&StepSummary{},
	&BrokennessUpdate{},
	&BlockadeRecord{},
}

// Run is one simulation run
type Run struct {
	ID        uint         `json:"id" gorm:"primarykey;autoIncrement;"`
	Name      string       `json:"name" gorm:"size:127"`
	Seed      int64        `json:"seed"`
	StartTime time.Time    `json:"startTime"`
	EndTime   sql.NullTime `json:"endTime"`
	Steps     uint         `json:"steps" gorm:"default:0"`
}

func (*Run) TableName() string {
	return "runs"
}

// StepSummary is the outcome of one step of a run
type StepSummary struct {
	ID            uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID         uint    `json:"runId" gorm:"index:idx_stepsummary_run_id"`
	Run           Run     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Time          int     `json:"time" gorm:"index:idx_stepsummary_time"`
	Updates       int     `json:"updates"`
	FireDamaged   int     `json:"fireDamaged"`
	Blockades     int     `json:"blockades"`
	BlockadeError string  `json:"blockadeError" gorm:"size:255"`
	DurationMs    float32 `json:"durationMs"`
}

func (*StepSummary) TableName() string {
	return "step_summaries"
}

// BrokennessUpdate is a single brokenness write
type BrokennessUpdate struct {
	ID         uint  `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID      uint  `json:"runId" gorm:"index:idx_brokenness_run_id"`
	Run        Run   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Time       int   `json:"time" gorm:"index:idx_brokenness_time"`
	BuildingID int32 `json:"buildingId" gorm:"index:idx_brokenness_building_id"`
	Brokenness int   `json:"brokenness"`
}

func (*BrokennessUpdate) TableName() string {
	return "brokenness_updates"
}

// BlockadeRecord is a blockade created during a run
type BlockadeRecord struct {
	ID         uint            `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID      uint            `json:"runId" gorm:"index:idx_blockade_run_id"`
	Run        Run             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Time       int             `json:"time" gorm:"index:idx_blockade_time"`
	BlockadeID int32           `json:"blockadeId"`
	RoadID     int32           `json:"roadId" gorm:"index:idx_blockade_road_id"`
	Apexes     datatypes.JSON  `json:"apexes"`                        // flat [x1, y1, x2, y2, ...] in millimetres
	Centroid   geom.Point      `json:"centroid"`                      // world millimetres
	Longitude  sql.NullFloat64 `json:"longitude" gorm:"default:NULL"` // WGS84, only with a georeference
	Latitude   sql.NullFloat64 `json:"latitude" gorm:"default:NULL"`
	RepairCost int             `json:"repairCost"`
}

func (*BlockadeRecord) TableName() string {
	return "blockade_records"
}

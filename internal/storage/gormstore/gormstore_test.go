package gormstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rescuesim/collapse/internal/model"
	"github.com/rescuesim/collapse/internal/model/convert"
	"github.com/rescuesim/collapse/pkg/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB creates an in-memory SQLite DB.
// MaxOpenConns=1 ensures all operations use the same connection (in-memory
// SQLite databases are per-connection, so multiple connections would each
// see an empty database).
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

type offsetGeoref struct{}

func (offsetGeoref) ToWGS84(xmm, ymm float64) (float64, float64) {
	return 10 + xmm/1e6, 50 + ymm/1e6
}

func newTestBackend(t *testing.T, deps Dependencies) (*Backend, *gorm.DB) {
	t.Helper()
	if deps.DB == nil {
		deps.DB = newTestDB(t)
	}
	deps.Logger = zerolog.Nop()
	b := New(deps)
	require.NoError(t, b.Init())
	return b, deps.DB
}

func testStep(step int) *core.StepRecord {
	return &core.StepRecord{
		Time: step,
		BrokennessUpdates: []core.BrokennessUpdate{
			{BuildingID: 1, Brokenness: 60},
			{BuildingID: 2, Brokenness: 0},
		},
		Blockades: []core.Blockade{{
			ID: 10, Position: 3, Apexes: []int{0, 0, 2000, 0, 2000, 1000, 0, 1000}, X: 1000, Y: 500, RepairCost: 2,
		}},
		FireDamaged: 1,
		Duration:    3 * time.Millisecond,
	}
}

func count(t *testing.T, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func TestInit_NoDB(t *testing.T) {
	b := New(Dependencies{Logger: zerolog.Nop()})
	assert.Error(t, b.Init())
	assert.NoError(t, b.Close())
}

func TestInit_Migrates(t *testing.T) {
	_, db := newTestBackend(t, Dependencies{})
	for _, m := range model.DatabaseModels {
		assert.True(t, db.Migrator().HasTable(m), "%T not migrated", m)
	}
}

func TestStartRun_AssignsID(t *testing.T) {
	b, db := newTestBackend(t, Dependencies{})

	start := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	run := &core.Run{Name: "quake", Seed: 42, StartTime: start}
	require.NoError(t, b.StartRun(run))
	assert.NotZero(t, run.ID)

	var stored model.Run
	require.NoError(t, db.First(&stored, run.ID).Error)
	assert.Equal(t, "quake", stored.Name)
	assert.Equal(t, int64(42), stored.Seed)
	assert.True(t, start.Equal(stored.StartTime), "start time must scan back from sqlite")
	assert.False(t, stored.EndTime.Valid)
}

func TestRecordStep_WithoutRun(t *testing.T) {
	b, _ := newTestBackend(t, Dependencies{})
	assert.ErrorIs(t, b.RecordStep(testStep(1)), core.ErrNoRun)
	assert.ErrorIs(t, b.EndRun(), core.ErrNoRun)
}

func TestRecordStep_WritesRows(t *testing.T) {
	b, db := newTestBackend(t, Dependencies{})
	run := &core.Run{Name: "rows", StartTime: time.Now()}
	require.NoError(t, b.StartRun(run))

	require.NoError(t, b.RecordStep(testStep(1)))
	require.NoError(t, b.RecordStep(&core.StepRecord{Time: 2, BlockadeErr: "interrupted"}))

	assert.True(t, b.queues.Summaries.Empty())
	assert.True(t, b.queues.Brokenness.Empty())
	assert.True(t, b.queues.Blockades.Empty())

	assert.Equal(t, int64(2), count(t, db, &model.StepSummary{}))
	assert.Equal(t, int64(2), count(t, db, &model.BrokennessUpdate{}))
	assert.Equal(t, int64(1), count(t, db, &model.BlockadeRecord{}))

	var summaries []model.StepSummary
	require.NoError(t, db.Order("time").Find(&summaries).Error)
	require.Len(t, summaries, 2)
	assert.Equal(t, run.ID, summaries[0].RunID)
	assert.Equal(t, 2, summaries[0].Updates)
	assert.Equal(t, 1, summaries[0].Blockades)
	assert.Equal(t, "interrupted", summaries[1].BlockadeError)
}

func TestRecordStep_BlockadeRoundTrip(t *testing.T) {
	b, db := newTestBackend(t, Dependencies{})
	require.NoError(t, b.StartRun(&core.Run{Name: "roundtrip", StartTime: time.Now()}))
	step := testStep(1)
	require.NoError(t, b.RecordStep(step))

	var rec model.BlockadeRecord
	require.NoError(t, db.First(&rec).Error)
	assert.False(t, rec.Longitude.Valid)

	back, err := convert.BlockadeRecordToCore(rec)
	require.NoError(t, err)
	assert.Equal(t, step.Blockades[0], back)
}

func TestRecordStep_Georeferenced(t *testing.T) {
	b, db := newTestBackend(t, Dependencies{Georef: offsetGeoref{}})
	require.NoError(t, b.StartRun(&core.Run{Name: "geo", StartTime: time.Now()}))
	require.NoError(t, b.RecordStep(testStep(1)))

	var rec model.BlockadeRecord
	require.NoError(t, db.First(&rec).Error)
	require.True(t, rec.Longitude.Valid)
	assert.InDelta(t, 10.001, rec.Longitude.Float64, 1e-9)
	assert.InDelta(t, 50.0005, rec.Latitude.Float64, 1e-9)
}

func TestRecordStep_FailedWriteStaysQueued(t *testing.T) {
	b, db := newTestBackend(t, Dependencies{})
	require.NoError(t, b.StartRun(&core.Run{Name: "fail", StartTime: time.Now()}))
	require.NoError(t, db.Migrator().DropTable(&model.BlockadeRecord{}))

	err := b.RecordStep(testStep(1))
	require.Error(t, err)
	assert.Equal(t, 1, b.queues.Summaries.Len())
	assert.Equal(t, 2, b.queues.Brokenness.Len())
	assert.Equal(t, 1, b.queues.Blockades.Len())
	// the transaction rolled back the rows written before the failure
	assert.Equal(t, int64(0), count(t, db, &model.StepSummary{}))

	require.NoError(t, db.AutoMigrate(&model.BlockadeRecord{}))
	require.NoError(t, b.RecordStep(&core.StepRecord{Time: 2}))
	assert.Equal(t, int64(2), count(t, db, &model.StepSummary{}))
	assert.Equal(t, int64(1), count(t, db, &model.BlockadeRecord{}))
}

func TestEndRun_StampsRun(t *testing.T) {
	b, db := newTestBackend(t, Dependencies{})
	run := &core.Run{Name: "end", StartTime: time.Now()}
	require.NoError(t, b.StartRun(run))
	require.NoError(t, b.RecordStep(testStep(1)))
	require.NoError(t, b.RecordStep(testStep(2)))
	require.NoError(t, b.EndRun())

	var stored model.Run
	require.NoError(t, db.First(&stored, run.ID).Error)
	assert.True(t, stored.EndTime.Valid)
	assert.False(t, stored.EndTime.Time.Before(stored.StartTime))
	assert.Equal(t, uint(2), stored.Steps)

	assert.ErrorIs(t, b.RecordStep(testStep(3)), core.ErrNoRun)
}

func TestEndRun_DumpsSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collapse.db")
	b, _ := newTestBackend(t, Dependencies{DumpPath: path})
	require.NoError(t, b.StartRun(&core.Run{Name: "dump", StartTime: time.Now()}))
	require.NoError(t, b.RecordStep(testStep(1)))
	require.NoError(t, b.EndRun())

	_, err := os.Stat(path)
	require.NoError(t, err)

	dumped, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count(t, dumped, &model.BlockadeRecord{}))
}

func TestClose(t *testing.T) {
	b, _ := newTestBackend(t, Dependencies{})
	assert.NoError(t, b.Close())
}

// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rescuesim/collapse/pkg/core"
)

// RunExport is the root JSON structure
type RunExport struct {
	Name      string     `json:"name"`
	Seed      int64      `json:"seed"`
	StartTime time.Time  `json:"startTime"`
	EndTime   time.Time  `json:"endTime"`
	Steps     []StepJSON `json:"steps"`
}

// StepJSON is one recorded step
type StepJSON struct {
	Time          int            `json:"time"`
	Brokenness    [][2]int       `json:"brokenness"` // [buildingId, brokenness]
	Blockades     []BlockadeJSON `json:"blockades"`
	FireDamaged   int            `json:"fireDamaged"`
	BlockadeError string         `json:"blockadeError,omitempty"`
	DurationMs    float64        `json:"durationMs"`
}

// BlockadeJSON is a blockade created during a step
type BlockadeJSON struct {
	ID         int32  `json:"id"`
	Road       int32  `json:"road"`
	Apexes     []int  `json:"apexes"`
	Centroid   [2]int `json:"centroid"`
	RepairCost int    `json:"repairCost"`
}

// exportJSON writes the run data to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	// Build filename
	runName := strings.ReplaceAll(b.run.Name, " ", "_")
	runName = strings.ReplaceAll(runName, ":", "_")
	if runName == "" {
		runName = "run"
	}
	timestamp := b.run.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", runName, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", runName, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() RunExport {
	export := RunExport{
		Name:      b.run.Name,
		Seed:      b.run.Seed,
		StartTime: b.run.StartTime,
		EndTime:   time.Now(),
		Steps:     make([]StepJSON, 0, b.steps.Len()),
	}

	for _, s := range b.steps.Snapshot() {
		step := StepJSON{
			Time:          s.Time,
			Brokenness:    make([][2]int, 0, len(s.BrokennessUpdates)),
			Blockades:     make([]BlockadeJSON, 0, len(s.Blockades)),
			FireDamaged:   s.FireDamaged,
			BlockadeError: s.BlockadeErr,
			DurationMs:    float64(s.Duration.Microseconds()) / 1000,
		}
		for _, u := range s.BrokennessUpdates {
			step.Brokenness = append(step.Brokenness, [2]int{int(u.BuildingID), u.Brokenness})
		}
		for _, bl := range s.Blockades {
			step.Blockades = append(step.Blockades, blockadeJSON(bl))
		}
		export.Steps = append(export.Steps, step)
	}

	return export
}

func blockadeJSON(b core.Blockade) BlockadeJSON {
	apexes := b.Apexes
	if apexes == nil {
		apexes = []int{}
	}
	return BlockadeJSON{
		ID:         int32(b.ID),
		Road:       int32(b.Position),
		Apexes:     apexes,
		Centroid:   [2]int{b.X, b.Y},
		RepairCost: b.RepairCost,
	}
}

func writeJSON(path string, data RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

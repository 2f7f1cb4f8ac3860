// Package export buffers enriched readings and flushes them to a
// spreadsheet in fixed-size batches. The sink is auxiliary: a failed
// flush loses the batch and nothing else.
package export

import (
	"fmt"
	"log"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/fleetpulse/telemetry/internal/domain"
)

// DefaultBatchSize is the number of readings accumulated per flush
const DefaultBatchSize = 2000

const sheetName = "Sheet1"

var header = []interface{}{
	"VehicleID", "Timestamp", "Latitude", "Longitude", "Speed",
	"PreviousSpeed", "Acceleration", "Temperature", "Battery", "FuelLevel",
	"Weather", "RoadType", "SpeedLimit", "Night", "TrafficLevel",
	"Anomaly", "AnomalyType",
}

// XLSXExporter accumulates readings and writes them to an .xlsx file
// every batchSize readings. Safe for concurrent Append.
type XLSXExporter struct {
	mu        sync.Mutex
	path      string
	batchSize int
	buf       []domain.VehicleTelemetry
}

// NewXLSXExporter creates an exporter writing to path
func NewXLSXExporter(path string, batchSize int) *XLSXExporter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &XLSXExporter{
		path:      path,
		batchSize: batchSize,
		buf:       make([]domain.VehicleTelemetry, 0, batchSize),
	}
}

// Append buffers one reading, flushing when the batch is full. Flush
// errors are logged and the batch is discarded.
func (e *XLSXExporter) Append(data domain.VehicleTelemetry) {
	e.mu.Lock()
	e.buf = append(e.buf, data)
	if len(e.buf) < e.batchSize {
		e.mu.Unlock()
		return
	}
	batch := e.buf
	e.buf = make([]domain.VehicleTelemetry, 0, e.batchSize)
	e.mu.Unlock()

	if err := e.write(batch); err != nil {
		log.Printf("export: dropping batch of %d readings: %v", len(batch), err)
	}
}

// Flush writes any buffered readings immediately
func (e *XLSXExporter) Flush() error {
	e.mu.Lock()
	batch := e.buf
	e.buf = make([]domain.VehicleTelemetry, 0, e.batchSize)
	e.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return e.write(batch)
}

// write renders one batch as a sheet with the fixed header row
func (e *XLSXExporter) write(batch []domain.VehicleTelemetry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("export: failed to write header: %w", err)
	}

	for i, data := range batch {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: failed to compute cell name: %w", err)
		}
		row := []interface{}{
			data.VehicleID,
			data.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
			data.Latitude,
			data.Longitude,
			data.Speed,
			data.PreviousSpeed,
			data.Acceleration,
			data.Temperature,
			data.Battery,
			data.FuelLevel,
			string(data.Weather),
			string(data.RoadType),
			data.SpeedLimit,
			data.Night,
			data.TrafficLevel,
			data.Anomaly,
			data.AnomalyType,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("export: failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("export: failed to save %s: %w", e.path, err)
	}

	return nil
}

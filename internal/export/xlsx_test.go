package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fleetpulse/telemetry/internal/domain"
)

func reading(id string) domain.VehicleTelemetry {
	return domain.VehicleTelemetry{
		VehicleID:   id,
		Timestamp:   time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC),
		Speed:       82.5,
		Weather:     domain.WeatherRain,
		RoadType:    domain.RoadHighway,
		SpeedLimit:  120,
		Anomaly:     true,
		AnomalyType: string(domain.AnomalyOverspeed),
	}
}

func TestFlushAtBatchSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicle_data.xlsx")
	e := NewXLSXExporter(path, 2)

	e.Append(reading("CAR-001"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no file before the batch fills")

	e.Append(reading("CAR-002"))
	_, err = os.Stat(path)
	require.NoError(t, err, "batch of 2 must trigger a flush")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Fixed 17-column header
	first, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "VehicleID", first)
	last, err := f.GetCellValue("Sheet1", "Q1")
	require.NoError(t, err)
	assert.Equal(t, "AnomalyType", last)

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two readings")
	assert.Len(t, rows[0], 17)

	id, err := f.GetCellValue("Sheet1", "A2")
	require.NoError(t, err)
	assert.Equal(t, "CAR-001", id)
	weather, err := f.GetCellValue("Sheet1", "K2")
	require.NoError(t, err)
	assert.Equal(t, "rain", weather)
	anomalyType, err := f.GetCellValue("Sheet1", "Q3")
	require.NoError(t, err)
	assert.Equal(t, "overspeed", anomalyType)
}

func TestFlushWritesRemainder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicle_data.xlsx")
	e := NewXLSXExporter(path, 100)

	e.Append(reading("CAR-001"))
	require.NoError(t, e.Flush())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestFlushEmptyBufferIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicle_data.xlsx")
	e := NewXLSXExporter(path, 10)

	require.NoError(t, e.Flush())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultBatchSize(t *testing.T) {
	e := NewXLSXExporter("vehicle_data.xlsx", 0)
	assert.Equal(t, DefaultBatchSize, e.batchSize)
}

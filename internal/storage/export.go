package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/drivesim/internal/sim"
	"github.com/san-kum/drivesim/internal/vehicle"
)

type ExportData struct {
	Vehicle  string             `json:"vehicle"`
	Driver   string             `json:"driver"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Columns  []string           `json:"columns"`
	Rows     [][]float64        `json:"rows"`
	Metrics  map[string]float64 `json:"metrics"`
}

func NewExportData(meta RunMetadata, table *Table) ExportData {
	return ExportData{
		Vehicle:  meta.Vehicle,
		Driver:   meta.Driver,
		Dt:       meta.Dt,
		Duration: meta.Duration,
		Steps:    meta.Steps,
		Columns:  table.Columns,
		Rows:     table.Rows,
		Metrics:  meta.Metrics,
	}
}

func ExportDataFromResult(vehicleName, driver string, cfg sim.Config, result *sim.Result) ExportData {
	return ExportData{
		Vehicle:  vehicleName,
		Driver:   driver,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Steps:    result.StepsTaken,
		Columns:  vehicle.Columns,
		Rows:     result.Rows,
		Metrics:  result.Metrics,
	}
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

func WriteCSV(w io.Writer, columns []string, rows [][]float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		record = record[:0]
		for _, val := range row {
			record = append(record, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ExportCSV(path string, table *Table) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, table.Columns, table.Rows)
}

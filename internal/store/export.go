package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/odeint/internal/solver"
)

type ExportData struct {
	Problem     string             `json:"problem"`
	Method      string             `json:"method"`
	Steps       int                `json:"steps"`
	Evaluations int                `json:"evaluations"`
	FinalTime   float64            `json:"final_time"`
	Times       []float64          `json:"times"`
	States      [][]float64        `json:"states"`
	Events      []EventMetadata    `json:"events,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

func exportData(problem, method string, metrics map[string]float64, result *solver.Result) ExportData {
	data := ExportData{
		Problem:     problem,
		Method:      method,
		Steps:       result.Steps,
		Evaluations: result.Evaluations,
		FinalTime:   result.FinalTime,
		Times:       result.Times,
		States:      result.States,
		Metrics:     metrics,
	}
	for _, ev := range result.Events {
		data.Events = append(data.Events, EventMetadata{Time: ev.Time, Index: ev.Index})
	}
	return data
}

func ExportJSON(path, problem, method string, metrics map[string]float64, result *solver.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeJSON(file, problem, method, metrics, result)
}

func ExportJSONStdout(problem, method string, metrics map[string]float64, result *solver.Result) error {
	return writeJSON(os.Stdout, problem, method, metrics, result)
}

func writeJSON(w io.Writer, problem, method string, metrics map[string]float64, result *solver.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(problem, method, metrics, result))
}

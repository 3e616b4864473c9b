package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/bdesim/internal/series"
)

// Store keeps one directory per run: metadata.json plus series.csv with the
// merged time axis and a 0/1 column per signal.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
	Delays    []float64 `json:"delays"`
	Start     float64   `json:"start"`
	// SimStart is where the simulation proper began: the histories' shared
	// end time. Everything in [Start, SimStart] is supplied history, not
	// solver output.
	SimStart     float64            `json:"sim_start"`
	End          float64            `json:"end"`
	Variables    []string           `json:"variables"`
	ForcingNames []string           `json:"forcing_names,omitempty"`
	SwitchCounts []int              `json:"switch_counts"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

// Run is a stored run read back from disk.
type Run struct {
	Meta    RunMetadata
	Outputs []*series.BooleanTimeSeries
	Forcing []*series.BooleanTimeSeries
}

// Save writes a completed run and returns its id. simStart is the histories'
// shared end time the simulation started from.
func (s *Store) Save(model string, delays []float64, simStart float64, outputs, forcing []*series.BooleanTimeSeries, metrics map[string]float64) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     model,
		Timestamp: time.Now(),
		Delays:    delays,
		Start:     outputs[0].Start(),
		SimStart:  simStart,
		End:       outputs[0].End,
		Metrics:   metrics,
	}
	for _, o := range outputs {
		meta.Variables = append(meta.Variables, o.Label)
		meta.SwitchCounts = append(meta.SwitchCounts, len(o.T))
	}
	for _, f := range forcing {
		meta.ForcingNames = append(meta.ForcingNames, f.Label)
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.writeSeries(filepath.Join(runDir, "series.csv"), outputs, forcing); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) writeSeries(path string, outputs, forcing []*series.BooleanTimeSeries) error {
	// A forcing input may extend past the simulation end; clip it to the
	// run's range so every stored column shares one end time.
	end := outputs[0].End
	all := append([]*series.BooleanTimeSeries{}, outputs...)
	for _, f := range forcing {
		if f.Tolerance().Less(end, f.End) {
			cut, err := f.Cut(f.Start(), end, true)
			if err != nil {
				return err
			}
			f = cut
		}
		all = append(all, f)
	}
	t, y, err := series.Merge(all)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"t"}
	for _, sp := range all {
		header = append(header, sp.Label)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range t {
		row := []string{strconv.FormatFloat(t[i], 'g', -1, 64)}
		for _, v := range y[i] {
			if v {
				row = append(row, "1")
			} else {
				row = append(row, "0")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns the metadata of every stored run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.readMetadata(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) readMetadata(runID string) (RunMetadata, error) {
	var meta RunMetadata
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(data, &meta)
	return meta, err
}

// LoadRun reads a stored run back into per-signal series.
func (s *Store) LoadRun(runID string) (*Run, error) {
	meta, err := s.readMetadata(runID)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("run %s: empty series file", runID)
	}

	ncols := len(records[0]) - 1
	t := make([]float64, 0, len(records)-1)
	cols := make([][]bool, ncols)
	for _, row := range records[1:] {
		tt, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, err
		}
		t = append(t, tt)
		for c := 0; c < ncols; c++ {
			cols[c] = append(cols[c], row[c+1] == "1")
		}
	}

	run := &Run{Meta: meta}
	for c := 0; c < ncols; c++ {
		sp, err := series.New(t, cols[c], meta.End)
		if err != nil {
			return nil, err
		}
		sp.Label = records[0][c+1]
		sp.Compress()
		if c < len(meta.Variables) {
			run.Outputs = append(run.Outputs, sp)
		} else {
			run.Forcing = append(run.Forcing, sp)
		}
	}
	return run, nil
}

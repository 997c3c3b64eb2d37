package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/sim"
)

const (
	metadataFile = "metadata.json"
	layoutFile   = "layout.yaml"
	movementFile = "movement.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps finished runs, one directory per run id, under baseDir.
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
	ID         string             `json:"id"`
	Graph      string             `json:"graph"`
	Variant    string             `json:"variant"`
	Device     string             `json:"device,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       uint64             `json:"seed"`
	Nodes      int                `json:"nodes"`
	Edges      int                `json:"edges"`
	Ticks      int                `json:"ticks"`
	Converged  bool               `json:"converged"`
	AlgoTimeMS float64            `json:"algo_time_ms"`
	Properties map[string]any     `json:"properties"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Run is what Save persists. Graph carries the final positions.
type Run struct {
	Graph      *graph.Graph
	Result     *sim.Result
	Properties layout.Properties
	Seed       uint64
	Device     string
	Metrics    map[string]float64
}

// Save writes the final layout, the movement history and the metadata of a
// finished run and returns its id.
func (s *Store) Save(run Run) (string, error) {
	if run.Graph == nil || run.Result == nil {
		return "", errors.New("storage: run needs a graph and a result")
	}
	runID := uuid.New().String()
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Graph:      run.Graph.Name,
		Variant:    run.Result.Variant.String(),
		Device:     run.Device,
		Timestamp:  time.Now(),
		Seed:       run.Seed,
		Nodes:      run.Graph.NumNodes(),
		Edges:      run.Graph.NumEdges(),
		Ticks:      run.Result.Ticks,
		Converged:  run.Result.Converged,
		AlgoTimeMS: float64(run.Result.AlgoTime.Microseconds()) / 1000,
		Properties: run.Properties.Map(),
		Metrics:    run.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	final := run.Graph.Clone()
	final.SetPositions(run.Result.Positions)
	if err := writeLayout(filepath.Join(runDir, layoutFile), final); err != nil {
		return "", err
	}
	if err := writeMovement(filepath.Join(runDir, movementFile), run.Result.Movement); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeLayout(path string, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := graph.EncodeYAML(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeMovement(path string, movement []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"tick", "movement"}); err != nil {
		return err
	}
	for i, m := range movement {
		row := []string{strconv.Itoa(i + 1), strconv.FormatFloat(m, 'g', -1, 64)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the metadata of every stored run, newest first. Directories
// without readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return runs, nil
}

func (s *Store) dir(runID string) (string, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return "", fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}
	return filepath.Join(s.baseDir, runID), nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.dir(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadLayout returns the graph of a run with its final positions.
func (s *Store) LoadLayout(runID string) (*graph.Graph, error) {
	dir, err := s.dir(runID)
	if err != nil {
		return nil, err
	}
	g, err := graph.Load(filepath.Join(dir, layoutFile))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return g, err
}

// LoadMovement returns the per-tick movement history of a run.
func (s *Store) LoadMovement(runID string) ([]float64, error) {
	dir, err := s.dir(runID)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(dir, movementFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []float64{}, nil
	}

	movement := make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		m, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s: movement: %w", runID, err)
		}
		movement = append(movement, m)
	}
	return movement, nil
}

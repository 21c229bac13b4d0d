package journal

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var csvHeader = []string{"id", "created_at", "source", "instrument", "window_start", "window_end", "request", "result"}

// CSV appends one row per assessment to a single file. The request and
// result columns hold JSON.
type CSV struct {
	mu   sync.Mutex
	path string
	f    *os.File
	w    *csv.Writer
}

// NewCSV opens path for appending, writing the header if the file is new.
func NewCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return &CSV{path: path, f: f, w: w}, nil
}

func (j *CSV) Record(_ context.Context, a Assessment) error {
	req, err := json.Marshal(a.Request)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	res, err := json.Marshal(a.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	err = j.w.Write([]string{
		a.ID,
		ts(a.CreatedAt),
		a.Source,
		a.Instrument,
		ts(a.WindowStart),
		ts(a.WindowEnd),
		string(req),
		string(res),
	})
	if err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Get(ctx context.Context, id string) (Assessment, error) {
	all, err := j.readAll()
	if err != nil {
		return Assessment{}, err
	}
	for _, a := range all {
		if a.ID == id {
			return a, nil
		}
	}
	return Assessment{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (j *CSV) List(ctx context.Context, limit int) ([]Assessment, error) {
	all, err := j.readAll()
	if err != nil {
		return nil, err
	}
	// rows are appended oldest first
	out := make([]Assessment, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (j *CSV) readAll() ([]Assessment, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	var out []Assessment
	for line := 1; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && row[0] == csvHeader[0] {
			continue
		}
		a, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", j.path, line, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func parseRow(row []string) (Assessment, error) {
	if len(row) != len(csvHeader) {
		return Assessment{}, fmt.Errorf("want %d columns, got %d", len(csvHeader), len(row))
	}
	a := Assessment{ID: row[0], Source: row[2], Instrument: row[3]}

	var err error
	if a.CreatedAt, err = time.Parse(time.RFC3339Nano, row[1]); err != nil {
		return Assessment{}, err
	}
	if a.WindowStart, err = time.Parse(time.RFC3339Nano, row[4]); err != nil {
		return Assessment{}, err
	}
	if a.WindowEnd, err = time.Parse(time.RFC3339Nano, row[5]); err != nil {
		return Assessment{}, err
	}
	if err := json.Unmarshal([]byte(row[6]), &a.Request); err != nil {
		return Assessment{}, fmt.Errorf("decode request: %w", err)
	}
	if err := json.Unmarshal([]byte(row[7]), &a.Result); err != nil {
		return Assessment{}, fmt.Errorf("decode result: %w", err)
	}
	return a, nil
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.w.Flush()
	if err := j.w.Error(); err != nil {
		j.f.Close()
		return err
	}
	return j.f.Close()
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

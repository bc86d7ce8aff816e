package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"fortio.org/safecast"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"noticekit/internal/notice"
)

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 1

// Extension is the conventional file extension of snapshots.
const Extension = ".mp"

// ErrSchemaMismatch is returned for snapshots written with another schema version.
var ErrSchemaMismatch = errors.New("snapshot schema mismatch")

// Payload is the on-disk form of a recorder produced by one task.
type Payload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16 `msgpack:"schema"`

	RunID     string    `msgpack:"run_id"`
	Task      string    `msgpack:"task"`
	CreatedAt time.Time `msgpack:"created_at"`

	Limits           notice.Limits   `msgpack:"limits"`
	Validation       []notice.Notice `msgpack:"validation"`
	System           []notice.Notice `msgpack:"system"`
	ValidationCounts []Count         `msgpack:"validation_counts"`
	SystemCounts     []Count         `msgpack:"system_counts"`
	HasErrors        bool            `msgpack:"has_errors"`
}

// Count is a true-count entry stored compactly.
type Count struct {
	Code     string `msgpack:"c"`
	Severity uint8  `msgpack:"s"`
	N        uint32 `msgpack:"n"`
}

// New captures rec into a payload.
func New(runID uuid.UUID, task string, rec *notice.Recorder) (*Payload, error) {
	state := rec.State()
	validationCounts, err := toCounts(state.ValidationCounts)
	if err != nil {
		return nil, err
	}
	systemCounts, err := toCounts(state.SystemCounts)
	if err != nil {
		return nil, err
	}
	return &Payload{
		Schema:           schemaVersion,
		RunID:            runID.String(),
		Task:             task,
		CreatedAt:        time.Now().UTC(),
		Limits:           state.Limits,
		Validation:       state.Validation,
		System:           state.System,
		ValidationCounts: validationCounts,
		SystemCounts:     systemCounts,
		HasErrors:        state.HasErrors,
	}, nil
}

// Run parses the run identifier.
func (p *Payload) Run() (uuid.UUID, error) {
	return uuid.Parse(p.RunID)
}

// Recorder rebuilds the recorder captured in p.
func (p *Payload) Recorder() *notice.Recorder {
	return notice.Restore(notice.State{
		Limits:           p.Limits,
		Validation:       p.Validation,
		System:           p.System,
		ValidationCounts: fromCounts(p.ValidationCounts),
		SystemCounts:     fromCounts(p.SystemCounts),
		HasErrors:        p.HasErrors,
	})
}

// Encode writes p to w.
func Encode(w io.Writer, p *Payload) error {
	enc := msgpack.NewEncoder(w)
	return enc.Encode(p)
}

// Decode reads a payload from r and validates it.
func Decode(r io.Reader) (*Payload, error) {
	dec := msgpack.NewDecoder(r)
	// integers inside contexts decode as int64/uint64 rather than the
	// smallest type that fits
	dec.UseLooseInterfaceDecoding(true)

	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if p.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, p.Schema, schemaVersion)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Write stores p at path, replacing any previous file atomically.
func Write(path string, p *Payload) (err error) {
	var buf bytes.Buffer
	if err = Encode(&buf, p); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// atomic replace
	return os.Rename(f.Name(), path)
}

// Read loads the payload stored at path.
func Read(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ReadAll loads every path in order and returns the restored recorders.
func ReadAll(paths []string) ([]*notice.Recorder, error) {
	recs := make([]*notice.Recorder, 0, len(paths))
	for _, path := range paths {
		p, err := Read(path)
		if err != nil {
			return nil, err
		}
		recs = append(recs, p.Recorder())
	}
	return recs, nil
}

func (p *Payload) validate() error {
	for _, c := range append(append([]Count(nil), p.ValidationCounts...), p.SystemCounts...) {
		if c.Severity > uint8(notice.SevError) {
			return fmt.Errorf("snapshot: invalid severity %d for %q", c.Severity, c.Code)
		}
	}
	if err := validateList(p.Validation, notice.KindValidation, p.ValidationCounts); err != nil {
		return err
	}
	return validateList(p.System, notice.KindSystemError, p.SystemCounts)
}

// validateList checks that every notice in list has kind and that no key holds
// more notices than its recorded true count.
func validateList(list []notice.Notice, kind notice.Kind, counts []Count) error {
	limit := make(map[notice.MappingKey]uint32, len(counts))
	for _, c := range counts {
		limit[notice.MappingKey{Code: c.Code, Severity: notice.Severity(c.Severity)}] += c.N
	}
	held := make(map[notice.MappingKey]uint32, len(limit))
	for _, n := range list {
		if n.Severity > notice.SevError {
			return fmt.Errorf("snapshot: invalid severity %d for %q", uint8(n.Severity), n.Code)
		}
		if n.Kind != kind {
			return fmt.Errorf("snapshot: %s notice %q stored with %s notices", n.Kind, n.Code, kind)
		}
		if kind == notice.KindSystemError && n.Severity != notice.SevError {
			return fmt.Errorf("snapshot: system error %q has severity %s", n.Code, n.Severity)
		}
		key := n.MappingKey()
		held[key]++
		if held[key] > limit[key] {
			return fmt.Errorf("snapshot: %d %s notices stored for %s, only %d counted", held[key], kind, key, limit[key])
		}
	}
	return nil
}

func toCounts(in []notice.KeyCount) ([]Count, error) {
	out := make([]Count, 0, len(in))
	for _, kc := range in {
		n, err := safecast.Conv[uint32](kc.Count)
		if err != nil {
			return nil, fmt.Errorf("count for %s: %w", notice.MappingKey{Code: kc.Code, Severity: kc.Severity}, err)
		}
		out = append(out, Count{Code: kc.Code, Severity: uint8(kc.Severity), N: n})
	}
	return out, nil
}

func fromCounts(in []Count) []notice.KeyCount {
	out := make([]notice.KeyCount, 0, len(in))
	for _, c := range in {
		out = append(out, notice.KeyCount{Code: c.Code, Severity: notice.Severity(c.Severity), Count: int(c.N)})
	}
	return out
}

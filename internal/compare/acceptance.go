package compare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"noticekit/internal/report"
)

const (
	// DefaultReferenceReportName is the baseline report file inside a dataset directory.
	DefaultReferenceReportName = "reference.json"
	// DefaultLatestReportName is the candidate report file inside a dataset directory.
	DefaultLatestReportName = "latest.json"
	// DefaultThresholdPercent is the tolerated share of datasets with new errors.
	DefaultThresholdPercent = 1.0
)

// Options configures Acceptance. Empty report names fall back to the defaults.
type Options struct {
	ReferenceName string
	LatestName    string
	// ThresholdPercent is taken as given: zero tolerates no dataset with new
	// error codes. Start from DefaultOptions for the default threshold.
	ThresholdPercent float64
	// Jobs caps concurrently loaded datasets; 0 means GOMAXPROCS.
	Jobs     int
	Logger   *zap.Logger
	Progress ProgressSink
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ReferenceName:    DefaultReferenceReportName,
		LatestName:       DefaultLatestReportName,
		ThresholdPercent: DefaultThresholdPercent,
	}
}

// DatasetImpact is one dataset affected by a new error code.
type DatasetImpact struct {
	DatasetID   string `json:"datasetId"`
	NoticeCount int    `json:"noticesCount"`
}

// CodeImpact lists every dataset where an error code newly appeared.
type CodeImpact struct {
	Code                  string          `json:"code"`
	AffectedDatasetsCount int             `json:"affectedDatasetsCount"`
	AffectedDatasets      []DatasetImpact `json:"affectedDatasets"`
}

// DatasetResult is the comparison outcome for one dataset.
type DatasetResult struct {
	DatasetID string `json:"datasetId"`
	Result
	Corrupted bool   `json:"corrupted,omitempty"`
	Reason    string `json:"reason,omitempty"`

	newErrorCounts map[string]int
}

// Summary is the outcome of a batch acceptance run.
type Summary struct {
	NewErrors            []CodeImpact    `json:"newErrors"`
	Datasets             []DatasetResult `json:"datasets"`
	DatasetCount         int             `json:"datasetCount"`
	CorruptedCount       int             `json:"corruptedCount"`
	NewErrorDatasetCount int             `json:"newErrorDatasetCount"`
	InvalidPercent       float64         `json:"invalidPercent"`
	ThresholdPercent     float64         `json:"thresholdPercent"`
	Passed               bool            `json:"passed"`
}

// Write encodes the summary as indented JSON.
func (s *Summary) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s)
}

// Acceptance compares the reference and latest reports of every dataset
// directory directly under root.
//
// Datasets whose reports are missing or malformed are counted as corrupted
// and excluded from the percentage. The run fails acceptance when the share
// of remaining datasets with new error codes exceeds the threshold.
func Acceptance(ctx context.Context, root string, opts Options) (*Summary, error) {
	def := DefaultOptions()
	if opts.ReferenceName == "" {
		opts.ReferenceName = def.ReferenceName
	}
	if opts.LatestName == "" {
		opts.LatestName = def.LatestName
	}
	if opts.ThresholdPercent < 0 {
		return nil, fmt.Errorf("negative acceptance threshold: %v", opts.ThresholdPercent)
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	datasets, err := listDatasets(root)
	if err != nil {
		return nil, err
	}
	for _, id := range datasets {
		emit(opts.Progress, Event{Dataset: id, Status: StatusQueued})
	}

	results := make([]DatasetResult, len(datasets))
	if len(datasets) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobs, len(datasets)))
		for i, id := range datasets {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				emit(opts.Progress, Event{Dataset: id, Status: StatusWorking})
				res, err := compareDataset(filepath.Join(root, id), opts)
				res.DatasetID = id
				if err != nil {
					res.Corrupted = true
					res.Reason = err.Error()
					res.NewErrors, res.ResolvedErrors = []string{}, []string{}
					log.Warn("dataset corrupted", zap.String("dataset", id), zap.Error(err))
					emit(opts.Progress, Event{Dataset: id, Status: StatusError, Err: err})
				} else {
					emit(opts.Progress, Event{Dataset: id, Status: StatusDone})
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("acceptance cancelled: %w", err)
		}
	}

	summary := summarize(results, opts.ThresholdPercent)
	log.Info("acceptance finished",
		zap.Int("datasets", summary.DatasetCount),
		zap.Int("corrupted", summary.CorruptedCount),
		zap.Int("withNewErrors", summary.NewErrorDatasetCount),
		zap.Float64("invalidPercent", summary.InvalidPercent),
		zap.Bool("passed", summary.Passed))
	return summary, nil
}

func compareDataset(dir string, opts Options) (DatasetResult, error) {
	reference, err := report.ParseFile(filepath.Join(dir, opts.ReferenceName))
	if err != nil {
		return DatasetResult{}, fmt.Errorf("reference: %w", err)
	}
	latest, err := report.ParseFile(filepath.Join(dir, opts.LatestName))
	if err != nil {
		return DatasetResult{}, fmt.Errorf("latest: %w", err)
	}
	res := DatasetResult{Result: Diff(reference, latest)}
	res.newErrorCounts = make(map[string]int, len(res.NewErrors))
	for _, code := range res.NewErrors {
		res.newErrorCounts[code] = latest.ErrorNotices(code)
	}
	return res, nil
}

func summarize(results []DatasetResult, threshold float64) *Summary {
	s := &Summary{
		NewErrors:        make([]CodeImpact, 0),
		Datasets:         results,
		DatasetCount:     len(results),
		ThresholdPercent: threshold,
	}
	byCode := make(map[string][]DatasetImpact)
	for _, res := range results {
		if res.Corrupted {
			s.CorruptedCount++
			continue
		}
		if !res.HasRegression() {
			continue
		}
		s.NewErrorDatasetCount++
		for _, code := range res.NewErrors {
			byCode[code] = append(byCode[code], DatasetImpact{
				DatasetID:   res.DatasetID,
				NoticeCount: res.newErrorCounts[code],
			})
		}
	}

	codes := make([]string, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		s.NewErrors = append(s.NewErrors, CodeImpact{
			Code:                  code,
			AffectedDatasetsCount: len(byCode[code]),
			AffectedDatasets:      byCode[code],
		})
	}

	if valid := s.DatasetCount - s.CorruptedCount; valid > 0 {
		s.InvalidPercent = float64(s.NewErrorDatasetCount) / float64(valid) * 100
	}
	s.Passed = s.InvalidPercent <= threshold
	return s
}

// listDatasets returns the sorted names of the dataset directories under root.
func listDatasets(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	slices.Sort(ids)
	return ids, nil
}

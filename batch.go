package pdfdiff

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// ComparerFactory builds a comparer for one document pair. Batch workers
// call it once per pair so each comparison gets its own pdfium instance
// and its own output directory; pairs share no mutable state.
type ComparerFactory func(pairName string) (*Comparer, error)

// BatchOptions controls batch comparison of two directories.
type BatchOptions struct {
	// Workers bounds the worker pool. Defaults to runtime.NumCPU().
	Workers int

	// FailFast aborts the batch on the first pair failure instead of
	// recording it and continuing.
	FailFast bool
}

// PairResult records the outcome of one document-pair comparison.
type PairResult struct {
	Name    string          `json:"name"`
	OldPath string          `json:"old_path,omitempty"`
	NewPath string          `json:"new_path,omitempty"`
	Result  *DocumentResult `json:"result,omitempty"`
	Err     error           `json:"-"`
}

// documentPair is one unit of batch work.
type documentPair struct {
	index   int
	name    string
	oldPath string
	newPath string
}

// CompareDirectories compares the PDFs in two directories, paired by base
// name, across a bounded worker pool. Files without a counterpart are
// recorded as failed pairs. Results come back in pair-name order.
func CompareDirectories(factory ComparerFactory, oldDir, newDir string, opts BatchOptions) ([]PairResult, error) {
	oldFiles, err := listPDFs(oldDir)
	if err != nil {
		return nil, err
	}
	newFiles, err := listPDFs(newDir)
	if err != nil {
		return nil, err
	}

	pairs, results := pairByName(oldFiles, newFiles)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pairs) && len(pairs) > 0 {
		workers = len(pairs)
	}

	jobs := make(chan documentPair)
	var stopped atomic.Bool
	var firstErr error
	var errOnce sync.Once
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pair := range jobs {
				if stopped.Load() {
					results[pair.index].Err = errors.New("batch aborted")
					continue
				}

				result, err := comparePair(factory, pair)
				results[pair.index].Result = result
				results[pair.index].Err = err

				if err != nil && opts.FailFast {
					errOnce.Do(func() { firstErr = err })
					stopped.Store(true)
				}
			}
		}()
	}

	for _, pair := range pairs {
		jobs <- pair
	}
	close(jobs)
	wg.Wait()

	return results, firstErr
}

func comparePair(factory ComparerFactory, pair documentPair) (*DocumentResult, error) {
	comparer, err := factory(pair.name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build comparer for %s", pair.name)
	}

	result, err := comparer.CompareFiles(pair.oldPath, pair.newPath)

	// The comparer holds a pooled pdfium instance; releasing it here is
	// what lets later pairs acquire one when the pool is smaller than the
	// number of pairs.
	if closeErr := comparer.Close(); closeErr != nil && err == nil {
		err = errors.Wrapf(closeErr, "failed to release comparer for %s", pair.name)
	}
	return result, err
}

// listPDFs returns the PDF files in a directory keyed by base name.
func listPDFs(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FileNotFoundError{Path: dir}
		}
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	files := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		files[entry.Name()] = filepath.Join(dir, entry.Name())
	}
	return files, nil
}

// pairByName pairs files across the two directories by base name. Unpaired
// files come back pre-filled with an error so the batch can report them
// without comparing.
func pairByName(oldFiles, newFiles map[string]string) ([]documentPair, []PairResult) {
	names := make(map[string]bool, len(oldFiles)+len(newFiles))
	for name := range oldFiles {
		names[name] = true
	}
	for name := range newFiles {
		names[name] = true
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	var pairs []documentPair
	results := make([]PairResult, len(sorted))
	for i, name := range sorted {
		oldPath, inOld := oldFiles[name]
		newPath, inNew := newFiles[name]
		results[i] = PairResult{Name: name, OldPath: oldPath, NewPath: newPath}

		switch {
		case inOld && inNew:
			pairs = append(pairs, documentPair{
				index:   i,
				name:    name,
				oldPath: oldPath,
				newPath: newPath,
			})
		case inOld:
			results[i].Err = errors.Errorf("%s has no counterpart in the new directory", name)
		default:
			results[i].Err = errors.Errorf("%s has no counterpart in the old directory", name)
		}
	}

	return pairs, results
}

package local

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/perfinsights/mre/pkg/core"
)

// Engine runs one job over local files: map each input line, partition and
// sort by key, then reduce each partition.
type Engine struct {
	config core.JobConfig
}

func NewEngine(config core.JobConfig) *Engine {
	return &Engine{config: config}
}

func (e *Engine) Run() error {
	var files []string
	for _, pattern := range e.config.Inputs {
		matches, err := FindFiles(pattern)
		if err != nil {
			return err
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matched the input patterns: %v", e.config.Inputs)
	}

	mapped, err := e.runMap(files)
	if err != nil {
		return err
	}

	partitioned := e.runShuffle(mapped)
	results := e.runReduce(partitioned)

	return e.writeResults(results)
}

// runMap maps each input file on the worker pool and merges the emitted
// pairs. The first read error wins; map output produced after it is discarded.
func (e *Engine) runMap(files []string) ([]core.KeyValue, error) {
	pool := NewPool(e.config.NumWorkers)
	pool.Start()

	var (
		mu       sync.Mutex
		results  []core.KeyValue
		firstErr error
	)
	for _, file := range files {
		pool.Submit(func() {
			lines, err := ReadLines(file)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			var mapped []core.KeyValue
			for _, line := range lines {
				key := fmt.Sprintf("%s:%d", line.Filename, line.Number)
				mapped = append(mapped, e.config.MapFunc(key, line.Text)...)
			}

			mu.Lock()
			results = append(results, mapped...)
			mu.Unlock()
		})
	}
	pool.Close()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (e *Engine) runShuffle(mapped []core.KeyValue) map[int][]core.KeyValue {
	partitioned := make(map[int][]core.KeyValue)
	for _, kv := range mapped {
		partition := core.Partition(kv.Key, e.config.NumReducers)
		partitioned[partition] = append(partitioned[partition], kv)
	}

	for _, records := range partitioned {
		slices.SortFunc(records, func(left, right core.KeyValue) int {
			return cmp.Compare(left.Key, right.Key)
		})
	}

	return partitioned
}

func (e *Engine) runReduce(partitioned map[int][]core.KeyValue) map[int][]core.KeyValue {
	results := make(map[int][]core.KeyValue)
	for part, sortedPartition := range partitioned {
		results[part] = e.reducePartition(sortedPartition)
	}
	return results
}

func (e *Engine) reducePartition(sortedPartition []core.KeyValue) []core.KeyValue {
	var results []core.KeyValue

	i := 0
	for i < len(sortedPartition) {
		key := sortedPartition[i].Key
		values := []string{}

		for i < len(sortedPartition) && sortedPartition[i].Key == key {
			values = append(values, sortedPartition[i].Value)
			i++
		}

		results = append(results, e.config.ReduceFunc(key, values))
	}

	return results
}

func (e *Engine) writeResults(results map[int][]core.KeyValue) error {
	for part, records := range results {
		partFilename := fmt.Sprintf("part-%04d.tsv", part)
		outputPath := filepath.Join(e.config.Output, partFilename)

		lines := make([]string, 0, len(records))
		for _, record := range records {
			lines = append(lines, fmt.Sprintf("%s\t%s\n", record.Key, record.Value))
		}

		if err := WriteLines(outputPath, lines); err != nil {
			return err
		}
	}
	return nil
}

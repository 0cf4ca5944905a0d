package core

// MapFunc receives a record key ("filename:line") and its text, and emits
// zero or more key-value pairs.
type MapFunc func(string, string) []KeyValue

// ReduceFunc folds all values observed for one key into a single pair.
type ReduceFunc func(string, []string) KeyValue

type KeyValue struct {
	Key   string
	Value string
}

// JobConfig describes one engine run: where to read, where to write, and the
// resolved functions to apply.
type JobConfig struct {
	Inputs      []string
	Output      string
	NumWorkers  int
	NumReducers int
	MapFunc     MapFunc
	ReduceFunc  ReduceFunc
}

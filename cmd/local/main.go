package main

import (
	"flag"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/perfinsights/mre/pkg/core"
	"github.com/perfinsights/mre/pkg/jobs"
	"github.com/perfinsights/mre/pkg/local"
	"github.com/perfinsights/mre/pkg/mre"

	_ "github.com/perfinsights/mre/examples/grep"
	_ "github.com/perfinsights/mre/examples/wordcount"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var (
		input    = flag.String("input", "", "input files glob pattern")
		output   = flag.String("output", "", "output directory")
		workers  = flag.Int("workers", 4, "number of map workers")
		reducers = flag.Int("reducers", 4, "number of reducers")
		jobFile  = flag.String("job-file", "", "YAML file with an encoded job descriptor")
		function = flag.String("function", "", "builtin function to run for both map and reduce (e.g., wordcount, grep)")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("Input pattern must be specified using the -input flag")
	}
	if *output == "" {
		log.Fatal("Output directory must be specified using the -output flag")
	}
	if *reducers <= 0 {
		log.Fatal("Number of reducers must be > 0")
	}

	job, err := loadJob(*jobFile, *function)
	if err != nil {
		log.Fatalf("Failed to load job: %v. Available functions: %v", err, jobs.List())
	}

	mapFn, err := jobs.Resolve(job.MapFunctionHandle())
	if err != nil {
		log.Fatalf("Cannot resolve map function: %v", err)
	}
	reduceFn, err := jobs.Resolve(job.ReduceFunctionHandle())
	if err != nil {
		log.Fatalf("Cannot resolve reduce function: %v", err)
	}

	config := core.JobConfig{
		Inputs:      []string{*input},
		Output:      *output,
		NumWorkers:  *workers,
		NumReducers: *reducers,
		MapFunc:     mapFn.Map,
		ReduceFunc:  reduceFn.Reduce,
	}

	log.Printf(
		"Starting job %s with input: %s, output: %s, reducers: %d",
		job.GUID(),
		*input,
		*output,
		*reducers,
	)

	if err := local.NewEngine(config).Run(); err != nil {
		log.Fatalf("Job failed: %v", err)
	}

	log.Println("Job completed successfully")
}

// loadJob builds the job descriptor either from a YAML file holding its
// encoded mapping or from a builtin function name.
func loadJob(jobFile, function string) (*mre.Job, error) {
	if jobFile != "" {
		data, err := os.ReadFile(jobFile)
		if err != nil {
			return nil, err
		}
		var d map[string]any
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return mre.JobFromDict(d)
	}

	if _, err := jobs.Get(function); err != nil {
		return nil, err
	}
	handle := mre.NewBuiltinHandle(function)
	return mre.NewJob(handle, handle), nil
}

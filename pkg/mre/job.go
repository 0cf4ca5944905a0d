package mre

import (
	"fmt"

	"github.com/google/uuid"
)

// Job pairs a map function with a reduce function and carries a globally
// unique identifier. It is read-only after construction and safe for
// concurrent use. A Job holds its handles by reference only; it never
// inspects or calls the functions they name.
type Job struct {
	mapHandle    FunctionHandle
	reduceHandle FunctionHandle
	guid         string
}

// NewJob constructs a Job with a fresh guid. The guid is generated per call
// so that separately constructed jobs never share an identifier.
func NewJob(mapHandle, reduceHandle FunctionHandle) *Job {
	return NewJobWithGUID(mapHandle, reduceHandle, uuid.NewString())
}

// NewJobWithGUID constructs a Job with a caller-supplied identifier.
// Uniqueness of the identifier is the caller's responsibility.
func NewJobWithGUID(mapHandle, reduceHandle FunctionHandle, guid string) *Job {
	return &Job{
		mapHandle:    mapHandle,
		reduceHandle: reduceHandle,
		guid:         guid,
	}
}

func (j *Job) GUID() string {
	return j.guid
}

func (j *Job) MapFunctionHandle() FunctionHandle {
	return j.mapHandle
}

func (j *Job) ReduceFunctionHandle() FunctionHandle {
	return j.reduceHandle
}

// AsDict renders the Job as a plain mapping with exactly three keys:
// map_function_handle, reduce_function_handle, and guid.
func (j *Job) AsDict() map[string]any {
	return map[string]any{
		"map_function_handle":    j.mapHandle.AsDict(),
		"reduce_function_handle": j.reduceHandle.AsDict(),
		"guid":                   j.guid,
	}
}

// JobFromDict reconstructs a Job from a mapping produced by AsDict. The guid
// is restored from the mapping when present; a Job decoded from a mapping
// without a guid gets a fresh one. If either handle key is missing or its
// nested decode fails, the whole decode fails with an error wrapping
// ErrDecode.
func JobFromDict(d map[string]any) (*Job, error) {
	rawMap, ok := d["map_function_handle"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: job missing map_function_handle", ErrDecode)
	}
	mapHandle, err := FunctionHandleFromDict(rawMap)
	if err != nil {
		return nil, fmt.Errorf("map_function_handle: %w", err)
	}

	rawReduce, ok := d["reduce_function_handle"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: job missing reduce_function_handle", ErrDecode)
	}
	reduceHandle, err := FunctionHandleFromDict(rawReduce)
	if err != nil {
		return nil, fmt.Errorf("reduce_function_handle: %w", err)
	}

	if guid, ok := d["guid"].(string); ok && guid != "" {
		return NewJobWithGUID(mapHandle, reduceHandle, guid), nil
	}
	return NewJob(mapHandle, reduceHandle), nil
}

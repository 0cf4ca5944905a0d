package mre

import (
	"errors"
	"fmt"
)

// ErrDecode is wrapped by every error returned from the FromDict functions
// in this package. Callers can match it with errors.Is.
var ErrDecode = errors.New("malformed mapping")

// FunctionHandle is a serializable reference to an analysis function. Handles
// are opaque to the rest of the package: a Job only delegates to AsDict and
// never inspects or calls the function a handle names. Resolving a handle to
// an executable function is owned by the jobs registry.
type FunctionHandle interface {
	AsDict() map[string]any
}

// ModuleToLoad points at a script module by URL or by local path. Exactly one
// of Href and Filename is set.
type ModuleToLoad struct {
	Href     string
	Filename string
}

func (m ModuleToLoad) AsDict() map[string]any {
	if m.Href != "" {
		return map[string]any{"href": m.Href}
	}
	return map[string]any{"filename": m.Filename}
}

func moduleToLoadFromDict(d map[string]any) (ModuleToLoad, error) {
	href, hasHref := d["href"].(string)
	filename, hasFilename := d["filename"].(string)
	if hasHref == hasFilename {
		return ModuleToLoad{}, fmt.Errorf("%w: module requires exactly one of href or filename", ErrDecode)
	}
	return ModuleToLoad{Href: href, Filename: filename}, nil
}

// ScriptHandle names a function defined in external script modules that must
// be loaded before the function can run.
type ScriptHandle struct {
	Modules      []ModuleToLoad
	FunctionName string
}

func NewScriptHandle(functionName string, modules ...ModuleToLoad) *ScriptHandle {
	return &ScriptHandle{Modules: modules, FunctionName: functionName}
}

func (h *ScriptHandle) AsDict() map[string]any {
	modules := make([]any, 0, len(h.Modules))
	for _, m := range h.Modules {
		modules = append(modules, m.AsDict())
	}
	return map[string]any{
		"modules_to_load": modules,
		"function_name":   h.FunctionName,
	}
}

// BuiltinHandle names a function compiled into the binary and registered with
// the jobs registry.
type BuiltinHandle struct {
	Name string
}

func NewBuiltinHandle(name string) *BuiltinHandle {
	return &BuiltinHandle{Name: name}
}

func (h *BuiltinHandle) AsDict() map[string]any {
	return map[string]any{"builtin_name": h.Name}
}

// FunctionHandleFromDict reconstructs a handle from its encoded form,
// dispatching on the keys present in the mapping.
func FunctionHandleFromDict(d map[string]any) (FunctionHandle, error) {
	if _, hasBuiltin := d["builtin_name"]; hasBuiltin {
		if _, hasFunction := d["function_name"]; hasFunction {
			return nil, fmt.Errorf("%w: function handle carries both builtin_name and function_name", ErrDecode)
		}
	}

	if name, ok := d["builtin_name"].(string); ok {
		if name == "" {
			return nil, fmt.Errorf("%w: empty builtin_name", ErrDecode)
		}
		return &BuiltinHandle{Name: name}, nil
	}

	functionName, ok := d["function_name"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: function handle requires builtin_name or function_name", ErrDecode)
	}

	rawModules, ok := d["modules_to_load"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: function handle missing modules_to_load", ErrDecode)
	}
	modules := make([]ModuleToLoad, 0, len(rawModules))
	for _, raw := range rawModules {
		moduleDict, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: modules_to_load entry is not a mapping", ErrDecode)
		}
		module, err := moduleToLoadFromDict(moduleDict)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}

	return &ScriptHandle{Modules: modules, FunctionName: functionName}, nil
}

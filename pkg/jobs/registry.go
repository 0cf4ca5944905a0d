package jobs

import (
	"fmt"

	"github.com/perfinsights/mre/pkg/core"
	"github.com/perfinsights/mre/pkg/mre"
)

// Function is a registered builtin analysis function: a map half and a reduce
// half that a BuiltinHandle of the same name resolves to.
type Function struct {
	Map    core.MapFunc
	Reduce core.ReduceFunc
}

var registry = make(map[string]Function)

func Register(name string, fn Function) error {
	if _, exists := registry[name]; exists {
		return fmt.Errorf("function already registered: %s", name)
	}
	registry[name] = fn
	return nil
}

func Get(name string) (Function, error) {
	fn, exists := registry[name]
	if !exists {
		return Function{}, fmt.Errorf("function not found: %s", name)
	}
	return fn, nil
}

func List() []string {
	var names []string
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// Resolve turns a function handle into its registered builtin function. Only
// BuiltinHandle can run in-process; script handles need an external runtime
// and are rejected here.
func Resolve(handle mre.FunctionHandle) (Function, error) {
	builtin, ok := handle.(*mre.BuiltinHandle)
	if !ok {
		return Function{}, fmt.Errorf("cannot resolve %T: only builtin handles run in-process", handle)
	}
	return Get(builtin.Name)
}

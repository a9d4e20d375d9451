package runner

import "fmt"

// Function is a scalar function paired with its analytic derivative. Both
// are evaluated in float64 and re-rounded into the working representation at
// every Newton step, so only the iterate itself carries reduced precision.
type Function struct {
	Name  string
	Eval  func(float64) float64
	Deriv func(float64) float64
}

var functions = map[string]Function{
	"x3_minus_2": {
		Name:  "x3_minus_2",
		Eval:  func(x float64) float64 { return x*x*x - 2.0 },
		Deriv: func(x float64) float64 { return 3.0 * x * x },
	},
}

// LookupFunction resolves a function name from the experiment plan.
func LookupFunction(name string) (Function, error) {
	fn, ok := functions[name]
	if !ok {
		return Function{}, fmt.Errorf("unknown newton function: %q", name)
	}
	return fn, nil
}

// Package optimization provides shared data structures for optimization results.
package optimization

// Summary captures the result of a single optimization directive.
type Summary struct {
	Scope      string   `json:"scope"`
	Kind       string   `json:"kind"`
	TargetName string   `json:"targetName"`
	Field      string   `json:"field"`
	Original   float64  `json:"original"`
	Value      float64  `json:"value"`
	Limit      float64  `json:"limit"`
	Achieved   float64  `json:"achieved"`
	Headroom   float64  `json:"headroom"`
	Iterations int      `json:"iterations"`
	Converged  bool     `json:"converged"`
	Notes      []string `json:"notes,omitempty"`
}

package adaptive

import (
	"math"
	"math/bits"
	"sort"
	"sync"
)

// Recorder wraps an integrand and remembers every point it was called at.
// Safe for concurrent use, so it can instrument IntegrateConcurrent too.
//
// Example:
//
//	rec := adaptive.NewRecorder()
//	res, _ := adaptive.IntegrateWithConfig(rec.Wrap(math.Exp), 0, 1, cfg)
//	fmt.Println(rec.Calls() == res.Evaluations) // true
type Recorder struct {
	mu     sync.Mutex
	calls  int
	points map[uint64]int // float64 bits → call count
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{points: make(map[uint64]int)}
}

// Wrap returns f instrumented with this recorder.
func (r *Recorder) Wrap(f Func) Func {
	return func(x float64) float64 {
		r.mu.Lock()
		r.calls++
		r.points[math.Float64bits(x)]++
		r.mu.Unlock()
		return f(x)
	}
}

// Calls returns the total number of calls so far.
func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Distinct returns the number of distinct points evaluated.
func (r *Recorder) Distinct() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.points)
}

// Duplicates returns, in ascending order, the points evaluated more than once.
func (r *Recorder) Duplicates() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var dup []float64
	for key, n := range r.points {
		if n > 1 {
			dup = append(dup, math.Float64frombits(key))
		}
	}
	sort.Float64s(dup)
	return dup
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = 0
	r.points = make(map[uint64]int)
}

// WorstCaseEvaluations is the most integrand calls a run with the given
// depth ceiling can make: a full binary tree of refine calls,
// 3 + 2·(2^(depth+1) - 1). Saturates at math.MaxInt.
func WorstCaseEvaluations(maxDepth int) int {
	if maxDepth < 0 {
		return 3
	}
	if maxDepth+3 >= bits.UintSize {
		return math.MaxInt
	}
	refinements := (1 << (maxDepth + 1)) - 1
	return 3 + 2*refinements
}

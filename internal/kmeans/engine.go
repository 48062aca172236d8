package kmeans

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// State is the lifecycle position of an Engine.
type State int

const (
	Uninitialized State = iota
	Initialized
	Iterating
	Converged
	MaxIterationsReached
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case MaxIterationsReached:
		return "max-iterations-reached"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether results are available in this state.
func (s State) Terminal() bool {
	return s == Converged || s == MaxIterationsReached
}

// Engine runs Lloyd's algorithm over a private copy of a dataset.
// An Engine is not safe for concurrent use; independent engines share nothing.
type Engine struct {
	cfg    Trainer
	logger *slog.Logger

	rows, cols, k int
	data          Dataset
	centroids     Dataset
	mapping       []int
	iter          int
	state         State
	degenerate    []DegenerateEvent

	// Scratch space reused by every update pass.
	counts []int
	sums   Dataset
}

// NewEngine validates the shape and options and seeds the initial centroids.
// Any validation failure wraps ErrInvalidConfiguration.
func NewEngine(rows, cols, k int, data Dataset, options ...Option) (*Engine, error) {
	return NewTrainer(k, options...).Engine(rows, cols, data)
}

// Engine builds an Engine for data declared as rows x cols.
func (t Trainer) Engine(rows, cols int, data Dataset) (*Engine, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	if err := data.validate(rows, cols, t.k); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     t,
		logger:  t.logger.With(slog.Int("k", t.k)),
		rows:    rows,
		cols:    cols,
		k:       t.k,
		data:    data.Clone(),
		mapping: make([]int, rows),
	}
	for i := range e.mapping {
		e.mapping[i] = -1
	}
	e.counts, e.sums = prepare(e.k, e.cols)
	e.initializeCentroids()
	e.state = Initialized

	e.logger.Debug("Engine initialized",
		slog.Int("rows", rows),
		slog.Int("cols", cols),
		slog.String("init", t.initPolicy.String()),
		slog.String("empty", t.empty.String()),
	)
	return e, nil
}

func prepare(k int, l int) ([]int, Dataset) {
	cb := make([]int, k)
	cn := make(Dataset, k)
	for i := 0; i < k; i++ {
		cn[i] = make([]float64, l)
	}
	return cb, cn
}

func (e *Engine) initializeCentroids() {
	e.centroids = make(Dataset, e.k)
	switch e.cfg.initPolicy {
	case InitFarthest:
		e.initializeFarthest()
	case InitRandom:
		r := rand.New(rand.NewSource(e.cfg.seed))
		for i, j := range r.Perm(e.rows)[:e.k] {
			e.centroids[i] = append([]float64(nil), e.data[j]...)
		}
	default:
		for i := 0; i < e.k; i++ {
			e.centroids[i] = append([]float64(nil), e.data[i]...)
		}
	}
}

// initializeFarthest picks the first point, then each next centroid is the
// unpicked point with the largest distance to its nearest picked centroid.
func (e *Engine) initializeFarthest() {
	chosen := make([]bool, e.rows)
	d := make([]float64, e.rows)

	e.centroids[0] = append([]float64(nil), e.data[0]...)
	chosen[0] = true
	for j := range e.data {
		d[j] = EuclideanDistanceSquared(e.data[j], e.centroids[0])
	}

	for i := 1; i < e.k; i++ {
		n := -1
		for j := range e.data {
			if chosen[j] {
				continue
			}
			if n < 0 || d[j] > d[n] {
				n = j
			}
		}
		chosen[n] = true
		e.centroids[i] = append([]float64(nil), e.data[n]...)
		for j := range e.data {
			if f := EuclideanDistanceSquared(e.data[j], e.centroids[i]); f < d[j] {
				d[j] = f
			}
		}
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Iterations returns the number of completed update passes.
func (e *Engine) Iterations() int {
	return e.iter
}

// Centroids returns a copy of the current centroids.
func (e *Engine) Centroids() Dataset {
	return e.centroids.Clone()
}

// Assignment returns a copy of the current point to cluster mapping.
// Entries are -1 until the first Assign.
func (e *Engine) Assignment() []int {
	return append([]int(nil), e.mapping...)
}

// Assign maps every point to its nearest centroid and returns how many
// points changed cluster. On the first call every point counts as changed.
func (e *Engine) Assign() (int, error) {
	if e.state.Terminal() {
		return 0, ErrFinished
	}
	return e.assign(), nil
}

func (e *Engine) assign() int {
	if e.state == Initialized {
		e.state = Iterating
	}
	changes := 0
	for i, p := range e.data {
		n, _ := nearest(p, e.centroids)
		if e.mapping[i] != n {
			changes++
			e.mapping[i] = n
		}
	}
	return changes
}

// UpdateCentroids moves every centroid to the mean of its members and returns
// the clusters that had no members before the empty cluster policy applied.
func (e *Engine) UpdateCentroids() ([]int, error) {
	if e.state.Terminal() {
		return nil, ErrFinished
	}
	if e.state != Iterating {
		return nil, ErrNotAssigned
	}
	empty, _, _ := e.update()
	return empty, nil
}

// update recomputes centroids and returns the empty clusters, the largest
// coordinate shift of any recomputed centroid, and whether a point was
// reseeded into an empty cluster.
func (e *Engine) update() ([]int, float64, bool) {
	cb, cn := e.counts, e.sums
	for n := range cn {
		cb[n] = 0
		for j := range cn[n] {
			cn[n][j] = 0
		}
	}

	for i, p := range e.data {
		n := e.mapping[i]
		cb[n]++
		floats.Add(cn[n], p)
	}

	var empty []int
	for n := range cb {
		if cb[n] == 0 {
			empty = append(empty, n)
		}
	}
	e.iter++

	reseeded := false
	for _, n := range empty {
		e.degenerate = append(e.degenerate, DegenerateEvent{Iteration: e.iter, Cluster: n})
		e.logger.Warn("Empty cluster",
			slog.Int("cluster", n),
			slog.Int("iter", e.iter),
			slog.String("policy", e.cfg.empty.String()),
		)
		if e.cfg.empty == ReseedFarthest && e.reseed(n) {
			reseeded = true
		}
	}

	shift := 0.0
	for n := range cn {
		if cb[n] == 0 {
			continue
		}
		floats.Scale(1/float64(cb[n]), cn[n])
		for j := range cn[n] {
			shift = math.Max(shift, math.Abs(cn[n][j]-e.centroids[n][j]))
		}
		copy(e.centroids[n], cn[n])
	}
	return empty, shift, reseeded
}

// reseed moves the point farthest from its own centroid into the empty
// cluster c and reports whether a point was moved. Only clusters with at
// least two members give up a point, so no new empty cluster is created.
// Points sitting on their centroid are never moved; when every candidate
// does, the empty centroid is left unchanged.
func (e *Engine) reseed(c int) bool {
	cb, cn := e.counts, e.sums
	best, far := -1, 0.0
	for i, p := range e.data {
		n := e.mapping[i]
		if cb[n] < 2 {
			continue
		}
		if d := EuclideanDistanceSquared(p, e.centroids[n]); d > far {
			best, far = i, d
		}
	}
	if best < 0 {
		return false
	}

	p := e.data[best]
	from := e.mapping[best]
	cb[from]--
	floats.Sub(cn[from], p)
	cb[c] = 1
	copy(cn[c], p)
	e.mapping[best] = c

	e.logger.Debug("Reseeded empty cluster",
		slog.Int("cluster", c),
		slog.Int("point", best),
		slog.Int("from", from),
	)
	return true
}

// Run iterates assign and update until no point changes cluster, no centroid
// moves by more than the tolerance, or the iteration cap is reached.
// The context is checked once per pass; on cancellation the engine stays
// non-terminal and the context error is returned.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	for !e.state.Terminal() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changes := e.assign()
		e.logger.Debug("Assigned",
			slog.Int("iter", e.iter),
			slog.Int("changes", changes),
		)
		if e.iter > 0 && changes == 0 {
			e.state = Converged
			break
		}
		if e.iter >= e.cfg.maxIterations {
			e.state = MaxIterationsReached
			break
		}

		// A reseed rewrites the mapping after assign, so only a fresh assign
		// can confirm convergence on that pass.
		if _, shift, reseeded := e.update(); !reseeded && shift <= e.cfg.tolerance {
			e.state = Converged
		}
	}

	e.logger.Debug("Run finished",
		slog.String("state", e.state.String()),
		slog.Int("iter", e.iter),
		slog.Int("degenerate", len(e.degenerate)),
	)
	return e.Result()
}

// Result returns a snapshot of the final state. It fails with ErrNotFinished
// unless the engine is terminal.
func (e *Engine) Result() (*Result, error) {
	if !e.state.Terminal() {
		return nil, ErrNotFinished
	}

	r := &Result{
		Centroids:  e.centroids.Clone(),
		Assignment: append([]int(nil), e.mapping...),
		Sizes:      make([]int, e.k),
		Converged:  e.state == Converged,
		Iterations: e.iter,
		State:      e.state,
		Degenerate: append([]DegenerateEvent(nil), e.degenerate...),
	}
	for i, n := range e.mapping {
		r.Sizes[n]++
		r.Inertia += EuclideanDistanceSquared(e.data[i], e.centroids[n])
	}
	return r, nil
}

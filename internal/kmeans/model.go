package kmeans

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// InitPolicy selects how the initial centroids are chosen.
type InitPolicy int

const (
	// InitFirstK uses the first k points of the dataset.
	InitFirstK InitPolicy = iota
	// InitFarthest starts from the first point and repeatedly adds the point
	// farthest from every centroid chosen so far.
	InitFarthest
	// InitRandom samples k distinct points using the configured seed.
	InitRandom
)

var initPolicyNames = []string{"first", "farthest", "random"}

func (p InitPolicy) String() string {
	if p < 0 || int(p) >= len(initPolicyNames) {
		return fmt.Sprintf("InitPolicy(%d)", int(p))
	}
	return initPolicyNames[p]
}

// ParseInitPolicy parses the String form of an InitPolicy.
func ParseInitPolicy(s string) (InitPolicy, error) {
	for i, n := range initPolicyNames {
		if strings.EqualFold(s, n) {
			return InitPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown init policy %q [%s]", s, strings.Join(initPolicyNames, ","))
}

// EmptyPolicy selects what happens to a cluster that loses all its points.
type EmptyPolicy int

const (
	// RetainPrevious keeps the centroid of an empty cluster unchanged.
	RetainPrevious EmptyPolicy = iota
	// ReseedFarthest moves the point farthest from its centroid into the empty cluster.
	ReseedFarthest
)

var emptyPolicyNames = []string{"retain", "reseed"}

func (p EmptyPolicy) String() string {
	if p < 0 || int(p) >= len(emptyPolicyNames) {
		return fmt.Sprintf("EmptyPolicy(%d)", int(p))
	}
	return emptyPolicyNames[p]
}

// ParseEmptyPolicy parses the String form of an EmptyPolicy.
func ParseEmptyPolicy(s string) (EmptyPolicy, error) {
	for i, n := range emptyPolicyNames {
		if strings.EqualFold(s, n) {
			return EmptyPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown empty cluster policy %q [%s]", s, strings.Join(emptyPolicyNames, ","))
}

// Trainer holds the configuration of a clustering run.
type Trainer struct {
	k             int
	maxIterations int
	tolerance     float64
	initPolicy    InitPolicy
	seed          int64
	empty         EmptyPolicy
	logger        *slog.Logger
}

type Option func(*Trainer)

// NewTrainer create new Trainer
func NewTrainer(k int, options ...Option) Trainer {
	t := Trainer{
		k:             k,
		maxIterations: 100,
		initPolicy:    InitFirstK,
		empty:         RetainPrevious,
	}
	for i := range options {
		options[i](&t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	return t
}

// WithMaxIterations caps the number of assign/update passes.
func WithMaxIterations(i int) Option {
	return func(t *Trainer) {
		t.maxIterations = i
	}
}

// WithTolerance sets the largest centroid coordinate shift still considered converged.
// Zero requires bit-identical centroids.
func WithTolerance(eps float64) Option {
	return func(t *Trainer) {
		t.tolerance = eps
	}
}

func WithInit(p InitPolicy) Option {
	return func(t *Trainer) {
		t.initPolicy = p
	}
}

// WithSeed sets the seed used by InitRandom.
func WithSeed(seed int64) Option {
	return func(t *Trainer) {
		t.seed = seed
	}
}

func WithEmptyPolicy(p EmptyPolicy) Option {
	return func(t *Trainer) {
		t.empty = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Trainer) {
		t.logger = l
	}
}

func (t Trainer) validate() error {
	switch {
	case t.maxIterations < 1:
		return fmt.Errorf("%w: max iterations %d must be positive", ErrInvalidConfiguration, t.maxIterations)
	case t.tolerance < 0 || math.IsNaN(t.tolerance):
		return fmt.Errorf("%w: tolerance %g must be a non-negative number", ErrInvalidConfiguration, t.tolerance)
	case t.initPolicy < InitFirstK || t.initPolicy > InitRandom:
		return fmt.Errorf("%w: unknown init policy %d", ErrInvalidConfiguration, int(t.initPolicy))
	case t.empty < RetainPrevious || t.empty > ReseedFarthest:
		return fmt.Errorf("%w: unknown empty cluster policy %d", ErrInvalidConfiguration, int(t.empty))
	}
	return nil
}

// Fit clusters data, taking the shape from the data itself.
func (t Trainer) Fit(ctx context.Context, data Dataset) (*Result, error) {
	cols := 0
	if len(data) > 0 {
		cols = len(data[0])
	}
	e, err := t.Engine(len(data), cols, data)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx)
}

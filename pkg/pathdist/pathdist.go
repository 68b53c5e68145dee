// Package pathdist converts a sparse contact-frequency matrix into a dense
// all-pairs distance matrix by shortest-path inference over a weighted graph.
// A contact between two points is read as evidence of proximity: the more
// frequent the contact, the shorter the inferred edge (weight = 1/frequency).
package pathdist

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
)

// UnreachableDistance is the default sentinel written for point pairs in
// disjoint components of the contact graph. It is a large finite value rather
// than +Inf so that downstream arithmetic stays well-defined.
const UnreachableDistance = 1e6

var (
	ErrEmptyMatrix     = errors.New("pathdist: contact matrix has no rows")
	ErrNonSquare       = errors.New("pathdist: contact matrix must be square")
	ErrNegativeContact = errors.New("pathdist: contact frequencies must be non-negative")
)

// Options controls distance inference.
type Options struct {
	// Sentinel is the distance recorded for unreachable pairs.
	// 0 means UnreachableDistance.
	Sentinel float64
	// Workers is the number of goroutines running per-source shortest-path
	// searches. 0 means runtime.NumCPU(); 1 forces a sequential run.
	// Parallelism never changes the output.
	Workers int
	// Logger for diagnostics. nil means no logging.
	Logger *zap.Logger
}

// DefaultOptions returns the default inference configuration.
func DefaultOptions() Options {
	return Options{
		Sentinel: UnreachableDistance,
		Workers:  0,
		Logger:   nil,
	}
}

// InferDistances builds an undirected weighted graph from the contact matrix
// and returns the matrix of all-pairs shortest-path distances.
//
// An edge (i,j) exists wherever contacts[i,j] != 0, with weight
// 1/contacts[i,j]. When both (i,j) and (j,i) are non-zero the later
// (row-major) entry wins; callers are expected to supply a symmetric matrix.
// Non-zero diagonal entries are ignored: a self loop can never improve on the
// zero-length self path.
//
// The result is dense, non-negative, and has a zero diagonal. Pairs with no
// connecting path get Options.Sentinel instead of an error.
func InferDistances(contacts *mat.Dense, opts Options) (*mat.Dense, error) {
	if contacts == nil {
		return nil, ErrEmptyMatrix
	}
	n, c := contacts.Dims()
	if n == 0 {
		return nil, ErrEmptyMatrix
	}
	if n != c {
		return nil, fmt.Errorf("%w: got %d×%d", ErrNonSquare, n, c)
	}

	if opts.Sentinel == 0 {
		opts.Sentinel = UnreachableDistance
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}

	edges := 0
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			freq := contacts.At(row, col)
			if freq < 0 {
				return nil, fmt.Errorf("%w: contacts[%d,%d] = %g", ErrNegativeContact, row, col, freq)
			}
			if freq == 0 || row == col {
				continue
			}
			g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(col), simple.Node(row), 1/freq))
			edges++
		}
	}
	logger.Debug("contact graph built",
		zap.Int("nodes", n),
		zap.Int("edge_inserts", edges))

	distances := mat.NewDense(n, n, nil)
	fillRows(g, distances, n, opts.Sentinel, workerCount(opts.Workers, n))
	return distances, nil
}

// workerCount resolves the Workers option against the problem size.
func workerCount(workers, n int) int {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	return workers
}

// fillRows runs one Dijkstra search per source row and writes the resulting
// row of the distance matrix. Sources are split into contiguous row ranges,
// one per worker; ranges do not overlap, so writes need no synchronization.
func fillRows(g *simple.WeightedUndirectedGraph, distances *mat.Dense, n int, sentinel float64, workers int) {
	fill := func(start, end int) {
		for row := start; row < end; row++ {
			shortest := path.DijkstraFrom(g.Node(int64(row)), g)
			for col := 0; col < n; col++ {
				w := shortest.WeightTo(int64(col))
				if math.IsInf(w, 1) {
					w = sentinel
				}
				distances.Set(row, col, w)
			}
		}
	}

	if workers <= 1 || n <= 1 {
		fill(0, n)
		return
	}

	var wg sync.WaitGroup
	rowsPerWorker := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := start + rowsPerWorker
		if end > n {
			end = n
		}
		if start >= n {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fill(start, end)
		}(start, end)
	}
	wg.Wait()
}

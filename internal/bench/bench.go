// Package bench times NEXUS parsers. A run parses the same file a fixed
// number of times with each parser, one parser after the other, and prints
// one line per parser:
//
//	Time for nexus:  0.412
//	Time for gotree:  0.093
//
// The number is the wall clock time, in seconds, of all parses of that
// parser together. Parse results are discarded.
package bench

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"
)

// DefaultIterations is the number of parses per parser when none is given.
const DefaultIterations = 10

// Parser is a NEXUS file loader under measurement.
type Parser interface {
	Name() string
	ParseFile(path string) error
}

// Result is the timing of one parser.
type Result struct {
	Parser     string
	Iterations int
	Elapsed    time.Duration
}

// Seconds returns the elapsed time in seconds.
func (r Result) Seconds() float64 {
	return r.Elapsed.Seconds()
}

// String returns the line printed for r.
func (r Result) String() string {
	return fmt.Sprintf("Time for %s:  %s",
		r.Parser, strconv.FormatFloat(r.Seconds(), 'f', -1, 64))
}

// Logger receives progress from a Runner. *logger.ConsoleLogger
// implements it.
type Logger interface {
	LogParserStart(parser, path string, iterations int)
	LogParserDone(parser string, iterations int, elapsed time.Duration)
}

// Runner runs benchmarks. The zero value is ready to use.
type Runner struct {
	// Log, if set, is told when each parser starts and finishes.
	Log Logger

	// Now reads the clock. Defaults to time.Now.
	Now func() time.Time
}

// Run is shorthand for a zero Runner's Run.
func Run(ctx context.Context, w io.Writer, path string, iterations int,
	parsers ...Parser) ([]Result, error) {
	var r Runner
	return r.Run(ctx, w, path, iterations, parsers...)
}

// Time is shorthand for a zero Runner's Time.
func Time(p Parser, path string, iterations int) (Result, error) {
	var r Runner
	return r.Time(context.Background(), p, path, iterations)
}

// Run times each parser in turn and writes its line to w as soon as that
// parser is done. If a parse fails, the run stops and the error is returned
// along with the results of the parsers that finished; the failing parser's
// line is not written.
func (r *Runner) Run(ctx context.Context, w io.Writer, path string,
	iterations int, parsers ...Parser) ([]Result, error) {
	results := make([]Result, 0, len(parsers))
	for _, p := range parsers {
		res, err := r.Time(ctx, p, path, iterations)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		if _, err := fmt.Fprintln(w, res); err != nil {
			return results, err
		}
	}
	return results, nil
}

// Time parses path with p exactly iterations times (DefaultIterations if
// iterations <= 0) and measures the total time. The context is checked
// before every parse.
func (r *Runner) Time(ctx context.Context, p Parser, path string,
	iterations int) (Result, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}
	if r.Log != nil {
		r.Log.LogParserStart(p.Name(), path, iterations)
	}

	start := now()
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := p.ParseFile(path); err != nil {
			return Result{}, fmt.Errorf("%s: %w", p.Name(), err)
		}
	}
	elapsed := now().Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}

	if r.Log != nil {
		r.Log.LogParserDone(p.Name(), iterations, elapsed)
	}
	return Result{Parser: p.Name(), Iterations: iterations, Elapsed: elapsed}, nil
}

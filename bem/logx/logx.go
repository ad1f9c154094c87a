// Package logx is the thin structured-logging wrapper the rest of bem
// uses for assembly and solver diagnostics, grounded on the teacher's
// logging idiom (sdfx wraps stdlib log; this module instead adopts
// rs/zerolog, already pulled in by the wider example pack, since the
// per-thread assembly/solve diagnostics in spec.md 4.3/5 want leveled,
// structured fields rather than formatted strings).
package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// L is the package-wide logger, writing human-readable console output
// in development and left swappable (via SetOutput) for JSON in
// production driver code.
var L = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// SetOutput redirects L's writer, e.g. to a JSON sink for a batch run.
func SetOutput(w io.Writer) {
	L = zerolog.New(w).With().Timestamp().Logger()
}

// Assembly logs one matrix-assembly pass: element counts, thread
// count and wall time.
func Assembly(numVerts, numTrigs, numThreads int, elapsedSeconds float64) {
	L.Info().
		Int("vertices", numVerts).
		Int("triangles", numTrigs).
		Int("threads", numThreads).
		Float64("seconds", elapsedSeconds).
		Msg("assembled G/H system")
}

// Solve logs one linear-solve pass: method, iteration count (BiCGSTAB
// only, 0 for the dense LU path) and residual norm.
func Solve(method string, iterations int, residual float64) {
	L.Info().
		Str("method", method).
		Int("iterations", iterations).
		Float64("residual", residual).
		Msg("solved boundary system")
}

// Remesh logs one remesh pass's vertex/triangle count delta.
func Remesh(beforeV, afterV, beforeT, afterT int) {
	L.Info().
		Int("vertices_before", beforeV).
		Int("vertices_after", afterV).
		Int("triangles_before", beforeT).
		Int("triangles_after", afterT).
		Msg("remeshed surface")
}

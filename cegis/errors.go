package cegis

import "github.com/cockroachdb/errors"

// Error kinds (§7). Unsolvable is deliberately not one of these: it is a
// non-error outcome surfaced as an empty Solution.
var (
	// ErrOracleUnknown is fatal: the decision procedure could not decide a
	// validity query.
	ErrOracleUnknown = errors.New("oracle returned an unknown validity result")
	// ErrResourceExhausted is fatal to the current solve; raised at the
	// next callback boundary after a wall-clock or memory ceiling trips.
	ErrResourceExhausted = errors.New("resource limit exceeded")
	// ErrSpecShape is raised by pre-flight checks before enumeration
	// begins (e.g. unsupported let-binding shapes).
	ErrSpecShape = errors.New("unsupported specification shape")
	// ErrInternalInvariant indicates a bug: an assertion the core relies
	// on to stay sound was violated.
	ErrInternalInvariant = errors.New("internal invariant violation")
)

// wrapf wraps err with a formatted message while preserving errors.Is
// against the sentinel kind.
func wrapf(kind error, format string, args ...any) error {
	return errors.WithMessagef(kind, format, args...)
}

package quota

import "errors"

var (
	// ErrCatalogUnavailable indicates the region catalog could not be
	// enumerated. Fatal: no resolution is possible without it.
	ErrCatalogUnavailable = errors.New("region catalog unavailable")

	// ErrProbeUnavailable indicates a single capacity check failed on
	// transport or auth. Recorded per pair; never fatal to the run.
	ErrProbeUnavailable = errors.New("capacity probe unavailable")

	// ErrNoViableRegion indicates resolution completed and no region
	// can host the manifest. A normal terminal outcome, not a crash.
	ErrNoViableRegion = errors.New("no viable region")

	// ErrSelectionOutOfRange indicates an externally supplied region
	// choice is not a member of the viable set.
	ErrSelectionOutOfRange = errors.New("selected region is not viable")
)

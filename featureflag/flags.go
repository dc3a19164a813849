package featureflag

type Flag string

const (
	// FlagCollisionFailClosed makes the detector treat entities with
	// corrupted (non-finite) geometry as colliding instead of
	// ignoring them. The default fails open: a corrupted pose cannot
	// block an interactive placement.
	FlagCollisionFailClosed Flag = "COLLISION_FAIL_CLOSED"

	// FlagDisableGridIndex forces every collision query down the
	// brute-force scan path, useful when diagnosing suspected grid
	// inconsistencies in the field.
	FlagDisableGridIndex Flag = "DISABLE_GRID_INDEX"
)

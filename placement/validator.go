package placement

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/wareyard/layoutcore/collision"
	"github.com/wareyard/layoutcore/geometry"
	"github.com/wareyard/layoutcore/models"
)

// BoundsEpsilon is the tolerance for zone containment checks. It
// matches the SAT projection epsilon so an entity sitting exactly on
// a zone edge is not rejected by float noise.
const BoundsEpsilon = geometry.SATEpsilon

// Verdict is the single placement decision handed back to the
// editor's interaction layer.
type Verdict struct {
	Valid  bool
	Reason string
}

// Validator applies the per-type placement policy:
//
//	floor       must have dimensions and not overlap another zone
//	rack        must fit in its zone and not collide
//	obstacle    must fit in its zone and not collide
//	entrypoint  must fit in its zone, collision-exempt
//	shelf, bin  inherit their parent's footprint, always valid
//	anything else is permitted by default
type Validator struct {
	store    *models.EntityStore
	detector *collision.Detector
}

func NewValidator(store *models.EntityStore, detector *collision.Detector) *Validator {
	return &Validator{
		store:    store,
		detector: detector,
	}
}

// ValidatePlacement decides whether the proposed placement is
// acceptable. It is cheap enough to call on every mouse-move tick.
// Every outcome is logged; the returned verdict is the contract.
func (v *Validator) ValidatePlacement(entityID string, block models.Block, parentID string) Verdict {
	verdict := v.validate(entityID, block, parentID)

	logs.WithTag("parent_id", parentID).
		WithTag("entity_id", entityID).
		WithTag("entity_type", block.BlockType()).
		WithTag("valid", verdict.Valid).
		WithTag("reason", verdict.Reason).
		Debug("placement validated")

	return verdict
}

func (v *Validator) validate(entityID string, block models.Block, parentID string) Verdict {
	switch b := block.(type) {
	case models.FloorBlock:
		return v.validateFloor(entityID, b)
	case models.RackBlock:
		return v.validateUnit(entityID, parentID, b.Position, b.Dimensions, b.Yaw, true, "entity is outside zone bounds")
	case models.ObstacleBlock:
		return v.validateUnit(entityID, parentID, b.Position, b.Dimensions, b.Yaw, true, "entity is outside zone bounds")
	case models.EntryPointBlock:
		return v.validateUnit(entityID, parentID, b.Position, b.Dimensions, b.Yaw, false, "entrypoint is outside zone bounds")
	default:
		// Shelves and bins inherit their parent's already-validated
		// footprint; unknown types are permitted.
		return Verdict{Valid: true}
	}
}

// validateFloor checks a zone against every other non-deleted zone.
// Zones are axis-aligned by policy, so this is an AABB test, not an
// oriented one. A floor needs no position; it defaults to the world
// origin.
func (v *Validator) validateFloor(entityID string, b models.FloorBlock) Verdict {
	if b.Dimensions == nil || !b.Dimensions.IsValid() {
		return Verdict{Reason: "missing dimensions for floor"}
	}

	var position geometry.Vector3
	if b.Position != nil {
		position = *b.Position
	}
	bounds := geometry.Bounds{
		X:      position.X,
		Z:      position.Z,
		Width:  b.Dimensions.Width,
		Length: b.Dimensions.Depth,
	}

	for _, floor := range v.store.Floors() {
		if floor.ID == entityID || (floor.PersistedID != "" && floor.PersistedID == entityID) {
			continue
		}
		if bounds.Overlaps(floor.Bounds()) {
			return Verdict{Reason: "zone overlaps with an existing zone"}
		}
	}
	return Verdict{Valid: true}
}

// validateUnit checks a zone-nested entity: it must carry a position
// and dimensions, fit entirely inside its parent zone, and, when
// collidable, not overlap any other rack or obstacle on the floor.
func (v *Validator) validateUnit(entityID string, parentID string, position *geometry.Vector3, dims *geometry.Dimensions, yaw float64, collidable bool, outOfBoundsReason string) Verdict {
	if position == nil || dims == nil || !dims.IsValid() {
		return Verdict{Reason: "missing position or dimensions"}
	}
	// A non-finite pose would produce non-finite corners and a bogus
	// out-of-bounds verdict. Reject it by name instead.
	if !position.IsFinite() || math.IsNaN(yaw) || math.IsInf(yaw, 0) {
		return Verdict{Reason: "entity geometry is not finite"}
	}

	parent, ok := v.store.Resolve(parentID)
	if !ok || !parent.IsFloor() {
		// An entity without a known zone context has nothing to be
		// bounded by or collide with.
		return Verdict{Valid: true}
	}

	world := geometry.Add(parent.Position, *position)
	box := geometry.NewBox2D(world, *dims, yaw)
	if !parent.Bounds().ContainsBox(box, BoundsEpsilon) {
		return Verdict{Reason: outOfBoundsReason}
	}

	if !collidable {
		return Verdict{Valid: true}
	}

	result := v.detector.CheckCollision(entityID, world, *dims, yaw, parent.ID)
	if result.HasCollision {
		return Verdict{Reason: result.Reason}
	}
	return Verdict{Valid: true}
}

package models

import "github.com/wareyard/layoutcore/geometry"

// Entity is a storage block as consumed from the entity store. The
// collision core reads it and never owns it.
//
// Position is world space for floors and zone-relative for entities
// nested under a parent floor. Only the Y component of Rotation (the
// yaw) participates in collision.
type Entity struct {
	ID          string              `json:"id"`
	PersistedID string              `json:"persistedId,omitempty"`
	Name        string              `json:"name,omitempty"`
	Type        BlockType           `json:"storageBlockType"`
	Position    geometry.Vector3    `json:"position"`
	Dimensions  geometry.Dimensions `json:"dimensions"`
	Rotation    geometry.Vector3    `json:"rotation"`
	ParentID    string              `json:"parentId,omitempty"`
	Deleted     bool                `json:"isDeleted,omitempty"`
	Status      Status              `json:"status,omitempty"`
}

func (e *Entity) Yaw() float64 {
	return e.Rotation.Y
}

func (e *Entity) IsFloor() bool {
	return e.Type == BlockTypeFloor
}

// IsCollidable reports whether the entity occupies physical volume in
// collision decisions. Shelves and bins inherit their parent's
// footprint, entry points are pass-through markers, ghosts and
// soft-deleted entities are out of play.
func (e *Entity) IsCollidable() bool {
	if e.Deleted || e.Status == StatusGhost {
		return false
	}
	return e.Type == BlockTypeRack || e.Type == BlockTypeObstacle
}

// Bounds returns the axis-aligned zone footprint of a floor. Floor
// positions are the minimum corner of the zone rectangle, not its
// center.
func (e *Entity) Bounds() geometry.Bounds {
	return geometry.Bounds{
		X:      e.Position.X,
		Z:      e.Position.Z,
		Width:  e.Dimensions.Width,
		Length: e.Dimensions.Depth,
	}
}

func (e *Entity) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

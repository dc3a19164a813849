package models

// BlockType identifies the kind of storage block an entity represents.
// Values outside this set flow through the core untouched; the policy
// treats them as unknown.
type BlockType string

const (
	BlockTypeFloor      BlockType = "floor"
	BlockTypeRack       BlockType = "rack"
	BlockTypeObstacle   BlockType = "obstacle"
	BlockTypeEntryPoint BlockType = "entrypoint"
	BlockTypeShelf      BlockType = "shelf"
	BlockTypeBin        BlockType = "bin"
)

// Status is the entity lifecycle state. Ghost entities are drag
// previews not yet committed to the layout; they render but never
// collide.
type Status string

const (
	StatusActive Status = "active"
	StatusGhost  Status = "ghost"
)

package models

import "github.com/wareyard/layoutcore/geometry"

// Block is the typed attribute payload of a proposed placement. Raw
// editor data is resolved into one of these variants once, at the
// boundary where it enters the core, so downstream policy code never
// performs speculative field lookups.
type Block interface {
	BlockType() BlockType
}

// FloorBlock describes a zone placement. Position defaults to the
// world origin when nil.
type FloorBlock struct {
	Position   *geometry.Vector3
	Dimensions *geometry.Dimensions
}

func (FloorBlock) BlockType() BlockType { return BlockTypeFloor }

// RackBlock describes a rack placement relative to its parent zone.
type RackBlock struct {
	Position   *geometry.Vector3
	Dimensions *geometry.Dimensions
	Yaw        float64
}

func (RackBlock) BlockType() BlockType { return BlockTypeRack }

type ObstacleBlock struct {
	Position   *geometry.Vector3
	Dimensions *geometry.Dimensions
	Yaw        float64
}

func (ObstacleBlock) BlockType() BlockType { return BlockTypeObstacle }

type EntryPointBlock struct {
	Position   *geometry.Vector3
	Dimensions *geometry.Dimensions
	Yaw        float64
}

func (EntryPointBlock) BlockType() BlockType { return BlockTypeEntryPoint }

type ShelfBlock struct{}

func (ShelfBlock) BlockType() BlockType { return BlockTypeShelf }

type BinBlock struct{}

func (BinBlock) BlockType() BlockType { return BlockTypeBin }

// GenericBlock carries any block type the policy does not know. Such
// placements are permitted by default.
type GenericBlock struct {
	Type BlockType
}

func (b GenericBlock) BlockType() BlockType { return b.Type }

// ResolveBlock tags a raw placement payload with its entity type.
func ResolveBlock(t BlockType, position *geometry.Vector3, dims *geometry.Dimensions, yaw float64) Block {
	switch t {
	case BlockTypeFloor:
		return FloorBlock{Position: position, Dimensions: dims}
	case BlockTypeRack:
		return RackBlock{Position: position, Dimensions: dims, Yaw: yaw}
	case BlockTypeObstacle:
		return ObstacleBlock{Position: position, Dimensions: dims, Yaw: yaw}
	case BlockTypeEntryPoint:
		return EntryPointBlock{Position: position, Dimensions: dims, Yaw: yaw}
	case BlockTypeShelf:
		return ShelfBlock{}
	case BlockTypeBin:
		return BinBlock{}
	default:
		return GenericBlock{Type: t}
	}
}

// BlockFromEntity resolves an existing entity into its block variant,
// used when revalidating an entity already in the store.
func BlockFromEntity(e *Entity) Block {
	position := e.Position
	dims := e.Dimensions
	return ResolveBlock(e.Type, &position, &dims, e.Yaw())
}

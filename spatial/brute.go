package spatial

import "github.com/wareyard/layoutcore/geometry"

// Brute is the degenerate Index: a single infinite cell. Nearby
// returns every indexed entity, so a detector running on it produces
// the same verdicts as one running on a Grid, just in O(n). It backs
// the uninitialized fallback path.
type Brute struct {
	entities map[string]geometry.Box2D
}

func NewBrute() *Brute {
	return &Brute{entities: make(map[string]geometry.Box2D)}
}

func (b *Brute) Insert(id string, box geometry.Box2D) {
	b.entities[id] = box
}

func (b *Brute) Remove(id string) {
	delete(b.entities, id)
}

func (b *Brute) Update(id string, box geometry.Box2D) {
	b.entities[id] = box
}

func (b *Brute) Nearby(box geometry.Box2D) []string {
	candidates := make([]string, 0, len(b.entities))
	for id := range b.entities {
		candidates = append(candidates, id)
	}
	return candidates
}

func (b *Brute) Clear() {
	b.entities = make(map[string]geometry.Box2D)
}

func (b *Brute) GetDebugInfo() DebugInfo {
	return DebugInfo{
		CellCount:   1,
		EntityCount: len(b.entities),
	}
}

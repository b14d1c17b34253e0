package movement

import "container/heap"

type reachItem struct {
	tile Tile
	dist int
}

type reachQueue []reachItem

func (q reachQueue) Len() int           { return len(q) }
func (q reachQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q reachQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *reachQueue) Push(x any)        { *q = append(*q, x.(reachItem)) }
func (q *reachQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func neighbors(tile Tile) [4]Tile {
	return [4]Tile{tile.Add(0, 1), tile.Add(1, 0), tile.Add(0, -1), tile.Add(-1, 0)}
}

// Reachable is one tile reachable by an entity within its movement budget,
// with the cost to reach it.
type Reachable struct {
	Tile Tile
	Cost int
}

// ReachableTiles computes every tile entityID can reach within budget
// movement points, via cost-aware Dijkstra over the 4-connected grid.
// Blocked cells are walls, impassable terrain, and tiles occupied by other
// entities; entityID's own tile never blocks itself.
func (e *Engine) ReachableTiles(entityID string, budget int) []Reachable {
	pos, ok := e.position(entityID)
	if !ok {
		return nil
	}
	start := pos.Anchor

	best := map[Tile]int{start: 0}
	pq := &reachQueue{{tile: start, dist: 0}}
	heap.Init(pq)

	var out []Reachable
	for pq.Len() > 0 {
		item := heap.Pop(pq).(reachItem)
		if item.dist != best[item.tile] {
			continue
		}
		if item.dist > budget {
			continue
		}
		out = append(out, Reachable{Tile: item.tile, Cost: item.dist})

		for _, next := range neighbors(item.tile) {
			if !e.canEnterTile(next, pos.Width, pos.Height, entityID) {
				continue
			}
			step := e.terrain.GetMovementCost(next.X, next.Y)
			nd := item.dist + step
			if nd > budget {
				continue
			}
			if existing, ok := best[next]; !ok || nd < existing {
				best[next] = nd
				heap.Push(pq, reachItem{tile: next, dist: nd})
			}
		}
	}
	return out
}

// FindPath returns the shortest cost-aware path from entityID's anchor to
// dest, honoring the same blockers as ReachableTiles. maxCost<=0 means
// unbounded. The returned path includes both endpoints.
func (e *Engine) FindPath(entityID string, dest Tile, maxCost int) ([]Tile, bool) {
	pos, ok := e.position(entityID)
	if !ok {
		return nil, false
	}
	start := pos.Anchor
	if start == dest {
		return []Tile{start}, true
	}

	best := map[Tile]int{start: 0}
	prev := make(map[Tile]Tile)
	pq := &reachQueue{{tile: start, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(reachItem)
		if item.dist != best[item.tile] {
			continue
		}
		if maxCost > 0 && item.dist > maxCost {
			continue
		}
		if item.tile == dest {
			return reconstructPath(prev, start, dest), true
		}
		for _, next := range neighbors(item.tile) {
			if !e.canEnterTile(next, pos.Width, pos.Height, entityID) {
				continue
			}
			step := e.terrain.GetMovementCost(next.X, next.Y)
			nd := item.dist + step
			if maxCost > 0 && nd > maxCost {
				continue
			}
			if existing, ok := best[next]; !ok || nd < existing {
				best[next] = nd
				prev[next] = item.tile
				heap.Push(pq, reachItem{tile: next, dist: nd})
			}
		}
	}
	return nil, false
}

func reconstructPath(prev map[Tile]Tile, start, dest Tile) []Tile {
	path := []Tile{dest}
	cur := dest
	for cur != start {
		cur = prev[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

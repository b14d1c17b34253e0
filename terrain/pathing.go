package terrain

import "container/heap"

// dijkstraItem is one entry in the path-search priority queue.
type dijkstraItem struct {
	tile Tile
	dist int
}

type dijkstraQueue []dijkstraItem

func (q dijkstraQueue) Len() int           { return len(q) }
func (q dijkstraQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q dijkstraQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *dijkstraQueue) Push(x any)        { *q = append(*q, x.(dijkstraItem)) }
func (q *dijkstraQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func (t *Terrain) walkableForPathing(tile Tile) bool {
	return t.IsValidPosition(tile.X, tile.Y, 1, 1) &&
		!t.walls[tile] && !t.isImpassableSolid(tile) && !t.isImpassableVoid(tile)
}

// dijkstraFrom runs single-source Dijkstra over the 4-connected walkable
// grid starting at start, stopping expansion once a tile's distance exceeds
// maxDist (0 means unbounded). It returns the distance and predecessor maps.
func (t *Terrain) dijkstraFrom(start Tile, maxDist int) (dist map[Tile]int, prev map[Tile]Tile) {
	dist = map[Tile]int{start: 0}
	prev = make(map[Tile]Tile)

	pq := &dijkstraQueue{{tile: start, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(dijkstraItem)
		if item.dist != dist[item.tile] {
			continue
		}
		for _, next := range [4]Tile{
			item.tile.Add(1, 0), item.tile.Add(-1, 0),
			item.tile.Add(0, 1), item.tile.Add(0, -1),
		} {
			if !t.walkableForPathing(next) {
				continue
			}
			step := t.GetMovementCost(next.X, next.Y)
			nd := item.dist + step
			if maxDist > 0 && nd > maxDist {
				continue
			}
			if existing, ok := dist[next]; !ok || nd < existing {
				dist[next] = nd
				prev[next] = item.tile
				heap.Push(pq, dijkstraItem{tile: next, dist: nd})
			}
		}
	}
	return dist, prev
}

// PrecomputePaths runs Dijkstra from every walkable tile and caches the
// resulting shortest path to every reachable tile, keyed by (start, end).
// The cache is discarded by any subsequent call that changes
// terrain_version (AddWall/RemoveWall/AddEffect/RemoveEffect).
func (t *Terrain) PrecomputePaths() {
	cache := make(map[[2]Tile][]Tile)
	for start := range t.walkableStartTiles() {
		dist, prev := t.dijkstraFrom(start, 0)
		for end := range dist {
			if end == start {
				continue
			}
			path := []Tile{end}
			cur := end
			for cur != start {
				cur = prev[cur]
				path = append(path, cur)
			}
			reverse(path)
			cache[[2]Tile{start, end}] = path
		}
	}
	t.pathCache = cache
}

// FindPath returns the cached shortest path from start to end, if
// PrecomputePaths has been run and the route exists.
func (t *Terrain) FindPath(start, end Tile) ([]Tile, bool) {
	if t.pathCache == nil {
		return nil, false
	}
	path, ok := t.pathCache[[2]Tile{start, end}]
	return path, ok
}

// PrecomputeReachableTiles runs cost-aware Dijkstra from every walkable tile
// for each budget in budgets and caches the resulting reachable tile sets,
// keyed by (start, budget).
func (t *Terrain) PrecomputeReachableTiles(budgets []int) {
	cache := make(map[tileBudget]map[Tile]bool)
	for _, budget := range budgets {
		for start := range t.walkableStartTiles() {
			dist, _ := t.dijkstraFrom(start, budget)
			reachable := make(map[Tile]bool, len(dist))
			for tile := range dist {
				reachable[tile] = true
			}
			cache[tileBudget{start: start, budget: budget}] = reachable
		}
	}
	t.reachableCache = cache
}

// ReachableTiles returns the cached reachable-tile set for (start, budget),
// if PrecomputeReachableTiles has been run for that budget.
func (t *Terrain) ReachableTiles(start Tile, budget int) (map[Tile]bool, bool) {
	if t.reachableCache == nil {
		return nil, false
	}
	set, ok := t.reachableCache[tileBudget{start: start, budget: budget}]
	return set, ok
}

func (t *Terrain) walkableStartTiles() map[Tile]bool {
	out := make(map[Tile]bool)
	for x := 0; x < t.width; x++ {
		for y := 0; y < t.height; y++ {
			tile := Tile{X: x, Y: y}
			if t.walkableForPathing(tile) {
				out[tile] = true
			}
		}
	}
	return out
}

func reverse(tiles []Tile) {
	for i, j := 0, len(tiles)-1; i < j; i, j = i+1, j-1 {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}
}

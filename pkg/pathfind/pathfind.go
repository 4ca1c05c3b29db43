// Package pathfind implements the three grid search primitives the engine
// needs — A* over buildable land, multi-source Dijkstra over the road grid,
// and unweighted BFS over the road grid — all walking *world.World directly
// through pkg/roadgraph rather than building an intermediate edge list.
// Every priority queue in this package breaks ties on (cost, steps, index),
// the one global ordering rule that keeps routing deterministic regardless
// of push order.
package pathfind

import (
	"container/heap"

	"github.com/dshills/procicity/pkg/roadgraph"
	"github.com/dshills/procicity/pkg/rules"
	"github.com/dshills/procicity/pkg/world"
)

// Point is a grid coordinate.
type Point struct{ X, Y int }

// item is one entry in the shared priority queue, ordered lexicographically
// by (cost, steps, index) — the single global tie-break rule.
type item struct {
	index int
	cost  int
	steps int
	owner int // -1 if unused
}

type priorityQueue []item

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	if pq[i].steps != pq[j].steps {
		return pq[i].steps < pq[j].steps
	}
	return pq[i].index < pq[j].index
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) {
	*pq = append(*pq, x.(item))
}
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	it := old[n-1]
	*pq = old[:n-1]
	return it
}

// AStarBuildableLand finds a path from start to goal over land tiles that
// are not water and not already a road, using the Manhattan heuristic on a
// 4-connected grid. allowOverlap, when true, also permits stepping onto
// existing road tiles (used when a carved corridor is allowed to merge into
// the network). Returns (path, true) on success, or (nil, false) if
// unreachable; this function never panics, even on an out-of-bounds start
// or goal.
func AStarBuildableLand(w *world.World, start, goal Point, allowOverlap bool) ([]Point, bool) {
	if !w.InBounds(start.X, start.Y) || !w.InBounds(goal.X, goal.Y) {
		return nil, false
	}
	passable := func(x, y int) bool {
		if !w.InBounds(x, y) {
			return false
		}
		t := w.At(x, y)
		if t.Terrain == world.Water {
			return false
		}
		if t.Overlay == world.OverlayRoad && !allowOverlap {
			return false
		}
		return true
	}
	if (!passable(start.X, start.Y) && start != goal) || !passable(goal.X, goal.Y) {
		return nil, false
	}

	n := w.Width * w.Height
	gScore := make([]int, n)
	steps := make([]int, n)
	visited := make([]bool, n)
	cameFrom := make([]int, n)
	for i := range gScore {
		gScore[i] = -1
		cameFrom[i] = -1
	}

	startIdx := w.Index(start.X, start.Y)
	goalIdx := w.Index(goal.X, goal.Y)
	gScore[startIdx] = 0
	steps[startIdx] = 0

	pq := &priorityQueue{{index: startIdx, cost: manhattan(start, goal), steps: 0, owner: -1}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(item)
		if visited[cur.index] {
			continue
		}
		visited[cur.index] = true
		if cur.index == goalIdx {
			return reconstructPath(w, cameFrom, goalIdx), true
		}
		cx, cy := cur.index%w.Width, cur.index/w.Width
		for _, d := range world.CardinalOffsets {
			nx, ny := cx+d[0], cy+d[1]
			if !passable(nx, ny) {
				continue
			}
			ni := w.Index(nx, ny)
			if visited[ni] {
				continue
			}
			tentativeG := gScore[cur.index] + 1
			if gScore[ni] == -1 || tentativeG < gScore[ni] {
				gScore[ni] = tentativeG
				steps[ni] = steps[cur.index] + 1
				cameFrom[ni] = cur.index
				f := tentativeG + manhattan(Point{nx, ny}, goal)
				heap.Push(pq, item{index: ni, cost: f, steps: steps[ni], owner: -1})
			}
		}
	}
	return nil, false
}

func manhattan(a, b Point) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func reconstructPath(w *world.World, cameFrom []int, goalIdx int) []Point {
	var rev []Point
	for idx := goalIdx; idx != -1; idx = cameFrom[idx] {
		rev = append(rev, Point{X: idx % w.Width, Y: idx / w.Width})
	}
	out := make([]Point, len(rev))
	for i, p := range rev {
		out[len(rev)-1-i] = p
	}
	return out
}

// CostField is the result of a Dijkstra or BFS sweep over the road grid.
// Unreachable tiles carry Cost = -1, Steps = -1, Owner = -1.
type CostField struct {
	Width, Height int
	Cost          []int
	Steps         []int
	Owner         []int // source index that reached this tile; -1 if unused or unreachable
}

// NewCostField allocates a CostField with every entry set to the
// unreachable sentinel.
func NewCostField(width, height int) *CostField {
	n := width * height
	cf := &CostField{Width: width, Height: height, Cost: make([]int, n), Steps: make([]int, n), Owner: make([]int, n)}
	for i := 0; i < n; i++ {
		cf.Cost[i] = -1
		cf.Steps[i] = -1
		cf.Owner[i] = -1
	}
	return cf
}

// ExtraCost supplies a per-tile additive congestion surcharge (milli-steps),
// keyed by flat index; nil means no surcharge anywhere.
type ExtraCost []int

// MultiSourceDijkstra computes shortest travel-time cost/step/owner fields
// over the road grid from a set of source road tiles, restricted to tiles
// reachable via OverlayRoad adjacency. sources order does not affect Cost
// or Steps (only Owner may differ on exact ties, and that tie-break is
// itself deterministic via the shared (cost,steps,index) ordering).
// allowed, if non-nil, restricts which road tiles may be traversed at all
// (source or intermediate): a tile with allowed[idx]==0 is treated as
// impassable. Pass nil to traverse every road tile.
func MultiSourceDijkstra(w *world.World, table rules.Table, sources []Point, extra ExtraCost, allowed []uint8) *CostField {
	cf := NewCostField(w.Width, w.Height)
	pq := &priorityQueue{}
	heap.Init(pq)

	blocked := func(idx int) bool { return allowed != nil && idx < len(allowed) && allowed[idx] == 0 }

	for srcRank, s := range sources {
		if !w.InBounds(s.X, s.Y) || !roadgraph.IsRoad(w, s.X, s.Y) {
			continue
		}
		idx := w.Index(s.X, s.Y)
		if blocked(idx) || cf.Cost[idx] != -1 {
			continue
		}
		cf.Cost[idx] = 0
		cf.Steps[idx] = 0
		cf.Owner[idx] = srcRank
		heap.Push(pq, item{index: idx, cost: 0, steps: 0, owner: srcRank})
	}

	visited := make([]bool, w.Width*w.Height)
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(item)
		if visited[cur.index] {
			continue
		}
		visited[cur.index] = true

		cx, cy := cur.index%w.Width, cur.index/w.Width
		for _, nb := range roadgraph.Neighbors(w, cx, cy) {
			ni := w.Index(nb.X, nb.Y)
			if visited[ni] || blocked(ni) {
				continue
			}
			edge, ok := roadgraph.EdgeCost(w, table, nb.X, nb.Y)
			if !ok {
				continue
			}
			if extra != nil && ni < len(extra) {
				edge += extra[ni]
			}
			newCost := cur.cost + edge
			newSteps := cur.steps + 1
			better := cf.Cost[ni] == -1 ||
				newCost < cf.Cost[ni] ||
				(newCost == cf.Cost[ni] && newSteps < cf.Steps[ni])
			if better {
				cf.Cost[ni] = newCost
				cf.Steps[ni] = newSteps
				cf.Owner[ni] = cur.owner
				heap.Push(pq, item{index: ni, cost: newCost, steps: newSteps, owner: cur.owner})
			}
		}
	}
	return cf
}

// MultiSourceBFS computes unweighted step counts from a set of source road
// tiles over the road grid, 4-neighbor order, deterministic. Cost mirrors
// Steps (BFS has no notion of weighted cost). allowed has the same meaning
// as in MultiSourceDijkstra.
func MultiSourceBFS(w *world.World, sources []Point, allowed []uint8) *CostField {
	cf := NewCostField(w.Width, w.Height)
	queue := make([]int, 0, len(sources))
	blocked := func(idx int) bool { return allowed != nil && idx < len(allowed) && allowed[idx] == 0 }

	for srcRank, s := range sources {
		if !w.InBounds(s.X, s.Y) || !roadgraph.IsRoad(w, s.X, s.Y) {
			continue
		}
		idx := w.Index(s.X, s.Y)
		if blocked(idx) || cf.Steps[idx] != -1 {
			continue
		}
		cf.Steps[idx] = 0
		cf.Cost[idx] = 0
		cf.Owner[idx] = srcRank
		queue = append(queue, idx)
	}

	for head := 0; head < len(queue); head++ {
		idx := queue[head]
		cx, cy := idx%w.Width, idx/w.Width
		for _, nb := range roadgraph.Neighbors(w, cx, cy) {
			ni := w.Index(nb.X, nb.Y)
			if cf.Steps[ni] != -1 || blocked(ni) {
				continue
			}
			cf.Steps[ni] = cf.Steps[idx] + 1
			cf.Cost[ni] = cf.Steps[ni]
			cf.Owner[ni] = cf.Owner[idx]
			queue = append(queue, ni)
		}
	}
	return cf
}

package space

import (
	"container/heap"
	"container/list"
	"math"
	"math/rand"
	"sync"
)

// GraphSpace is a TransportSpace over an arbitrary weighted directed graph
// of integer node ids, the Go analogue of ridepy's networkx-backed Graph
// space (util/spaces.py). No graph or LRU-cache library is present anywhere
// in the example corpus (see DESIGN.md), so the shortest-path search and its
// memoisation cache below are hand-rolled on top of container/heap and
// container/list, kept internally synchronised per spec.md §5's requirement
// that any space-level cache be thread-safe.
type GraphSpace struct {
	Velocity float64
	adj      map[int][]edge
	nodes    []int

	cacheMu  sync.Mutex
	cacheCap int
	cacheLRU *list.List            // front = most recently used
	cache    map[int]*list.Element // node -> element holding *spTree
}

type edge struct {
	to     int
	weight float64
}

type spTree struct {
	source int
	dist   map[int]float64
	prev   map[int]int
}

// NewGraphSpace constructs an empty graph space over velocity units; edges
// are added with AddEdge. cacheCap bounds the number of per-source
// shortest-path trees memoised at once.
func NewGraphSpace(velocity float64, cacheCap int) *GraphSpace {
	return &GraphSpace{
		Velocity: velocity,
		adj:      make(map[int][]edge),
		cacheCap: cacheCap,
		cacheLRU: list.New(),
		cache:    make(map[int]*list.Element),
	}
}

// AddEdge adds a directed weighted edge u->v. Call AddEdge(v,u,w) too for an
// undirected edge.
func (g *GraphSpace) AddEdge(u, v int, weight float64) {
	if _, ok := g.adj[u]; !ok {
		g.nodes = append(g.nodes, u)
	}
	if _, ok := g.adj[v]; !ok {
		g.nodes = append(g.nodes, v)
	}
	g.adj[u] = append(g.adj[u], edge{to: v, weight: weight})
}

func (g *GraphSpace) D(u, v int) float64 {
	if u == v {
		return 0
	}
	tree := g.shortestPathTreeFrom(u)
	d, ok := tree.dist[v]
	if !ok {
		return math.Inf(1)
	}
	return d
}

func (g *GraphSpace) T(u, v int) float64 {
	return g.D(u, v) / g.Velocity
}

func (g *GraphSpace) InterpDist(u, v int, distToDest float64) (int, float64) {
	if u == v {
		return u, 0
	}
	total := g.D(u, v)
	if distToDest >= total {
		return u, 0
	}
	seq := g.shortestPathVertexSequence(u, v)
	if len(seq) < 2 {
		return v, 0
	}
	traveled := total - distToDest
	tree := g.shortestPathTreeFrom(u)
	cum := 0.0
	for i := 0; i < len(seq)-1; i++ {
		step := tree.dist[seq[i+1]] - tree.dist[seq[i]]
		if cum+step > traveled {
			return seq[i+1], cum + step - traveled
		}
		cum += step
	}
	return v, 0
}

func (g *GraphSpace) InterpTime(u, v int, timeToDest float64) (int, float64) {
	loc, residualDist := g.InterpDist(u, v, timeToDest*g.Velocity)
	return loc, residualDist / g.Velocity
}

func (g *GraphSpace) RandomPoint() int {
	if len(g.nodes) == 0 {
		return 0
	}
	return g.nodes[rand.Intn(len(g.nodes))]
}

// shortestPathVertexSequence walks the predecessor map from v back to u.
func (g *GraphSpace) shortestPathVertexSequence(u, v int) []int {
	tree := g.shortestPathTreeFrom(u)
	if _, ok := tree.dist[v]; !ok {
		return nil
	}
	var rev []int
	for cur := v; ; {
		rev = append(rev, cur)
		if cur == u {
			break
		}
		prev, ok := tree.prev[cur]
		if !ok {
			return nil
		}
		cur = prev
	}
	seq := make([]int, len(rev))
	for i, n := range rev {
		seq[len(rev)-1-i] = n
	}
	return seq
}

// shortestPathTreeFrom returns the memoised single-source shortest-path
// tree rooted at u, computing and caching it via Dijkstra on a miss.
func (g *GraphSpace) shortestPathTreeFrom(u int) *spTree {
	g.cacheMu.Lock()
	if el, ok := g.cache[u]; ok {
		g.cacheLRU.MoveToFront(el)
		tree := el.Value.(*spTree)
		g.cacheMu.Unlock()
		return tree
	}
	g.cacheMu.Unlock()

	tree := g.dijkstra(u)

	g.cacheMu.Lock()
	defer g.cacheMu.Unlock()
	if el, ok := g.cache[u]; ok {
		g.cacheLRU.MoveToFront(el)
		return el.Value.(*spTree)
	}
	el := g.cacheLRU.PushFront(tree)
	g.cache[u] = el
	for g.cacheLRU.Len() > g.cacheCap {
		back := g.cacheLRU.Back()
		if back == nil {
			break
		}
		evicted := back.Value.(*spTree)
		delete(g.cache, evicted.source)
		g.cacheLRU.Remove(back)
	}
	return tree
}

type pqItem struct {
	node int
	dist float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

func (g *GraphSpace) dijkstra(source int) *spTree {
	dist := map[int]float64{source: 0}
	prev := map[int]int{}
	visited := map[int]bool{}

	pq := &priorityQueue{{node: source, dist: 0}}
	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		if visited[item.node] {
			continue
		}
		visited[item.node] = true
		for _, e := range g.adj[item.node] {
			nd := item.dist + e.weight
			if old, ok := dist[e.to]; !ok || nd < old {
				dist[e.to] = nd
				prev[e.to] = item.node
				heap.Push(pq, pqItem{node: e.to, dist: nd})
			}
		}
	}
	return &spTree{source: source, dist: dist, prev: prev}
}

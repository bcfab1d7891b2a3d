package stn

import (
	"github.com/rhartert/lcgsolver/internal/domain"
	"github.com/rhartert/yagh"
)

// shortestPaths runs a single-source Dijkstra over the active STN graph
// starting at origin, using reduced costs (weight + bound(source) -
// bound(target)) which are non-negative whenever the network is
// currently consistent — the standard Johnson's-algorithm trick that
// lets Dijkstra run on a graph with negative edge weights. When reverse
// is false it follows activeOut (the normal propagation direction, used
// to find successors); when true it follows activeIn (used to find
// predecessors of origin). It returns both the distance map and, for
// every reached node, the directional constraint used to reach it, so
// callers can reconstruct the path's enabler literals.
func (t *Theory) shortestPaths(store *domain.Store, origin domain.SignedVar, reverse bool) (map[domain.SignedVar]Weight, map[domain.SignedVar]dirEdge) {
	dist := map[domain.SignedVar]Weight{origin: 0}
	prev := map[domain.SignedVar]dirEdge{}

	n := 2 * store.NumVariables()
	pq := yagh.New[float64](0)
	pq.GrowBy(n)
	done := make([]bool, n)
	pq.Put(origin.Index(), 0)

	for {
		next, ok := pq.Pop()
		if !ok {
			break
		}
		sv := domain.SignedVar(next.Elem)
		if done[sv.Index()] {
			continue
		}
		done[sv.Index()] = true
		d := dist[sv]

		var adj []dirEdge
		if reverse {
			adj = t.db.activeIn[sv.Index()]
		} else {
			adj = t.db.activeOut[sv.Index()]
		}
		for _, de := range adj {
			c := t.db.constraints[de]

			reduced := c.weight + store.BoundValue(c.sourceBound) - store.BoundValue(c.targetBound)
			if reduced < 0 {
				reduced = 0
			}

			var nb domain.SignedVar
			if reverse {
				nb = c.sourceBound
			} else {
				nb = c.targetBound
			}

			nd := d + reduced
			if old, ok := dist[nb]; !ok || nd < old {
				dist[nb] = nd
				prev[nb] = de
				if !done[nb.Index()] {
					pq.Put(nb.Index(), float64(nd))
				}
			}
		}
	}
	return dist, prev
}

// pathEnablers walks the prev chain built by shortestPaths backward from
// from to to (the search's origin), collecting each edge's enabler
// literal along the way.
func pathEnablers(db *constraintDb, prev map[domain.SignedVar]dirEdge, from, to domain.SignedVar, reverse bool) []domain.Literal {
	var lits []domain.Literal
	node := from
	for node != to {
		de, ok := prev[node]
		if !ok {
			break
		}
		c := db.constraints[de]
		lits = append(lits, c.enabler)
		if reverse {
			node = c.targetBound
		} else {
			node = c.sourceBound
		}
	}
	return lits
}

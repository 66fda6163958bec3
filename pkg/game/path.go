package game

// FindPath runs a breadth-first search from start to end over 4-directional
// adjacency and returns the shortest path, start and end inclusive, or nil
// if no path of at most maxSteps steps exists.
//
// A cell is expandable iff it is in bounds, not an obstacle, and (unless
// ignoreOccupancy is set) not occupied by a hero other than the one standing
// on start. The start cell itself is always passable so a hero can path out
// of its own square.
//
// Neighbor expansion follows the fixed order in steps, so for a given board
// every conforming implementation produces the same path, not merely the same
// length. Legality decisions must only ever depend on the length.
func (gs *GameState) FindPath(start, end Position, maxSteps int, ignoreOccupancy bool) []Position {
	if !gs.InBounds(start) || !gs.InBounds(end) {
		return nil
	}
	if start == end {
		return []Position{start}
	}
	if maxSteps <= 0 {
		return nil
	}

	passable := func(p Position) bool {
		if !gs.InBounds(p) || gs.IsObstacle(p) {
			return false
		}
		if ignoreOccupancy || p == start {
			return true
		}
		return gs.HeroAt(p) == nil
	}

	type node struct {
		pos   Position
		depth int
	}
	parent := map[Position]Position{start: start}
	frontier := []node{{pos: start}}

	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]

		if cur.pos == end {
			return reconstruct(parent, start, end)
		}
		if cur.depth == maxSteps {
			continue
		}
		for _, d := range steps {
			next := Position{X: cur.pos.X + d.X, Y: cur.pos.Y + d.Y}
			if _, seen := parent[next]; seen {
				continue
			}
			if !passable(next) {
				continue
			}
			parent[next] = cur.pos
			frontier = append(frontier, node{pos: next, depth: cur.depth + 1})
		}
	}
	return nil
}

// PathLength returns the number of steps in a path returned by FindPath.
func PathLength(path []Position) int {
	if len(path) == 0 {
		return 0
	}
	return len(path) - 1
}

func reconstruct(parent map[Position]Position, start, end Position) []Position {
	var rev []Position
	for p := end; p != start; p = parent[p] {
		rev = append(rev, p)
	}
	path := make([]Position, 0, len(rev)+1)
	path = append(path, start)
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}

package core

// Primitive pairs a payload with its bounding box for BVH construction
type Primitive[T any] struct {
	Box  AABB
	Item T
}

// bvhNode is an arena entry. Children are indices into the arena; a node
// without children is a leaf holding exactly one item.
type bvhNode struct {
	box   AABB
	left  int32
	right int32
	item  int32
}

func (n bvhNode) isLeaf() bool {
	return n.left < 0 && n.right < 0
}

// BVH is a binary bounding volume hierarchy over arbitrary payloads.
// It reports candidate payloads whose boxes a ray passes through; exact
// intersection is left to the caller. It is immutable once built and safe
// for concurrent queries.
type BVH[T any] struct {
	nodes []bvhNode
	items []T
}

// NewBVH builds a hierarchy over the given primitives. An empty slice yields
// an empty hierarchy.
func NewBVH[T any](prims []Primitive[T]) *BVH[T] {
	bvh := &BVH[T]{}
	if len(prims) == 0 {
		return bvh
	}

	// Partitioning reorders entries, so work on a copy of the caller's slice
	work := make([]Primitive[T], len(prims))
	copy(work, prims)

	bvh.nodes = make([]bvhNode, 0, 2*len(prims)-1)
	bvh.items = make([]T, 0, len(prims))
	bvh.build(work)
	return bvh
}

// build appends the subtree for prims to the arena and returns its root index
func (bvh *BVH[T]) build(prims []Primitive[T]) int32 {
	box := prims[0].Box
	for _, p := range prims[1:] {
		box = box.Union(p.Box)
	}

	index := int32(len(bvh.nodes))
	bvh.nodes = append(bvh.nodes, bvhNode{box: box, left: -1, right: -1, item: -1})

	if len(prims) == 1 {
		bvh.nodes[index].item = int32(len(bvh.items))
		bvh.items = append(bvh.items, prims[0].Item)
		return index
	}

	split := partition(prims, box)
	left := bvh.build(prims[:split])
	right := bvh.build(prims[split:])
	bvh.nodes[index].left = left
	bvh.nodes[index].right = right
	return index
}

// partition splits prims about the midpoint of the longest axis of box and
// returns the size of the lower group. When every centroid lands on one side
// half of the entries are moved to the other, so both groups are non-empty.
func partition[T any](prims []Primitive[T], box AABB) int {
	axis := box.LongestAxis()
	mid := box.Centroid().Axis(axis)

	split := 0
	for i := range prims {
		if prims[i].Box.Centroid().Axis(axis) < mid {
			prims[i], prims[split] = prims[split], prims[i]
			split++
		}
	}

	if split == 0 || split == len(prims) {
		split = len(prims) / 2
	}
	return split
}

// Len returns the number of payloads in the hierarchy
func (bvh *BVH[T]) Len() int {
	return len(bvh.items)
}

// Bounds returns the box around every primitive, and false for an empty hierarchy
func (bvh *BVH[T]) Bounds() (AABB, bool) {
	if len(bvh.nodes) == 0 {
		return AABB{}, false
	}
	return bvh.nodes[0].box, true
}

// Candidates appends to dst every payload whose box the ray overlaps within
// [tMin, tMax] and returns the extended slice.
func (bvh *BVH[T]) Candidates(origin, direction Vec3, tMin, tMax float64, dst []T) []T {
	if len(bvh.nodes) == 0 {
		return dst
	}

	var stack [64]int32
	stackLen := 1
	stack[0] = 0
	for stackLen > 0 {
		stackLen--
		node := bvh.nodes[stack[stackLen]]
		if !node.box.Intersect(origin, direction, tMin, tMax) {
			continue
		}

		if node.isLeaf() {
			dst = append(dst, bvh.items[node.item])
			continue
		}

		if stackLen+2 > len(stack) {
			// Deeper than the fixed stack: finish this subtree recursively
			dst = bvh.collect(node.left, origin, direction, tMin, tMax, dst)
			dst = bvh.collect(node.right, origin, direction, tMin, tMax, dst)
			continue
		}
		stack[stackLen] = node.right
		stack[stackLen+1] = node.left
		stackLen += 2
	}
	return dst
}

func (bvh *BVH[T]) collect(index int32, origin, direction Vec3, tMin, tMax float64, dst []T) []T {
	node := bvh.nodes[index]
	if !node.box.Intersect(origin, direction, tMin, tMax) {
		return dst
	}
	if node.isLeaf() {
		return append(dst, bvh.items[node.item])
	}
	dst = bvh.collect(node.left, origin, direction, tMin, tMax, dst)
	return bvh.collect(node.right, origin, direction, tMin, tMax, dst)
}

// BVHStats describes the shape of a hierarchy
type BVHStats struct {
	Nodes    int
	Leaves   int
	MaxDepth int
}

// Stats walks the hierarchy and reports its node counts and depth
func (bvh *BVH[T]) Stats() BVHStats {
	var stats BVHStats
	if len(bvh.nodes) == 0 {
		return stats
	}
	bvh.collectStats(0, 0, &stats)
	return stats
}

func (bvh *BVH[T]) collectStats(index int32, depth int, stats *BVHStats) {
	stats.Nodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	node := bvh.nodes[index]
	if node.isLeaf() {
		stats.Leaves++
		return
	}
	bvh.collectStats(node.left, depth+1, stats)
	bvh.collectStats(node.right, depth+1, stats)
}

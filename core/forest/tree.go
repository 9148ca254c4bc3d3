package forest

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Node is a tree node stored in a flat slice. Leaves have Left == -1.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Class     int
}

// Tree is one fitted CART tree. Nodes[0] is the root.
type Tree struct {
	Nodes []Node
}

// Predict walks the tree: x[Feature] <= Threshold goes left.
func (t *Tree) Predict(x []float64) int {
	n := &t.Nodes[0]
	for n.Left >= 0 {
		if x[n.Feature] <= n.Threshold {
			n = &t.Nodes[n.Left]
		} else {
			n = &t.Nodes[n.Right]
		}
	}
	return n.Class
}

type grower struct {
	x          [][]float64
	y          []int
	numClasses int
	mtry       int
	maxDepth   int
	minLeaf    int
	rng        *rand.Rand

	nodes []Node
}

// bootstrap draws n row indices with replacement.
func (g *grower) bootstrap(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = g.rng.Intn(n)
	}
	return rows
}

func (g *grower) grow(rows []int) Tree {
	g.nodes = g.nodes[:0]
	g.split(rows, 0)
	return Tree{Nodes: append([]Node(nil), g.nodes...)}
}

// split appends the node for rows and returns its position.
func (g *grower) split(rows []int, depth int) int {
	counts := g.classCounts(rows)
	pos := len(g.nodes)
	g.nodes = append(g.nodes, Node{Left: -1, Right: -1, Class: majority(counts)})

	if counts[g.nodes[pos].Class] == float64(len(rows)) ||
		len(rows) < 2*g.minLeaf ||
		(g.maxDepth > 0 && depth >= g.maxDepth) {
		return pos
	}

	feature, threshold, ok := g.bestSplit(rows, counts)
	if !ok {
		return pos
	}

	var left, right []int
	for _, r := range rows {
		if g.x[r][feature] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	l := g.split(left, depth+1)
	r := g.split(right, depth+1)
	g.nodes[pos].Feature = feature
	g.nodes[pos].Threshold = threshold
	g.nodes[pos].Left = l
	g.nodes[pos].Right = r
	return pos
}

// bestSplit searches mtry random features for the threshold with the lowest
// weighted Gini impurity, respecting minLeaf on both sides.
func (g *grower) bestSplit(rows []int, total []float64) (int, float64, bool) {
	n := float64(len(rows))
	bestScore := gini(total, n)
	bestFeature, bestThreshold, found := 0, 0.0, false

	sorted := append([]int(nil), rows...)
	left := make([]float64, g.numClasses)
	right := make([]float64, g.numClasses)

	for _, f := range g.rng.Perm(len(g.x[0]))[:g.mtry] {
		sort.Slice(sorted, func(i, j int) bool { return g.x[sorted[i]][f] < g.x[sorted[j]][f] })
		for c := range left {
			left[c] = 0
		}
		copy(right, total)

		for i := 0; i < len(sorted)-1; i++ {
			c := g.y[sorted[i]]
			left[c]++
			right[c]--

			v, next := g.x[sorted[i]][f], g.x[sorted[i+1]][f]
			nl := float64(i + 1)
			if v == next || i+1 < g.minLeaf || len(sorted)-i-1 < g.minLeaf {
				continue
			}
			score := (nl*gini(left, nl) + (n-nl)*gini(right, n-nl)) / n
			if score < bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = v + (next-v)/2
				if bestThreshold >= next {
					bestThreshold = v
				}
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func (g *grower) classCounts(rows []int) []float64 {
	counts := make([]float64, g.numClasses)
	for _, r := range rows {
		counts[g.y[r]]++
	}
	return counts
}

// gini is 1 - sum(p_c^2) for class counts totalling n.
func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	return 1 - floats.Dot(counts, counts)/(n*n)
}

// majority is the most frequent class, lowest id on ties.
func majority(counts []float64) int {
	return floats.MaxIdx(counts)
}

package gbt

import (
	"context"
)

// minSplitGain is the smallest loss reduction accepted for a split.
const minSplitGain = 1e-6

// Node is one node of a regression tree. Rows with
// row[Feature] < Threshold go Left, all others go Right.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
	Gain      float64 `json:"gain"`
	Cover     float64 `json:"cover"`
}

// Tree is a regression tree stored as a flat node slice rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Predict returns the leaf value reached by row.
func (t *Tree) Predict(row []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if row[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Depth returns the number of split levels on the longest path.
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := &t.Nodes[i]
		if n.Leaf {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}

// split is the best candidate found for one frontier node on one feature.
type split struct {
	valid     bool
	feature   int
	threshold float64
	gain      float64
}

// builder grows trees level by level with exact greedy split search over
// presorted feature columns.
type builder struct {
	params Params
	x      [][]float64
	sorted [][]int // per feature, row indices ordered by value
	runner Runner
}

// build grows one tree on the given gradients restricted to features.
func (b *builder) build(ctx context.Context, grad, hess []float64, features []int) (Tree, error) {
	n := len(b.x)
	pos := make([]int, n)
	t := Tree{Nodes: []Node{{}}}
	frontier := []int{0}

	for depth := 0; len(frontier) > 0; depth++ {
		slot := make([]int, len(t.Nodes))
		for i := range slot {
			slot[i] = -1
		}
		for s, nid := range frontier {
			slot[nid] = s
		}

		sumG := make([]float64, len(frontier))
		sumH := make([]float64, len(frontier))
		for r := 0; r < n; r++ {
			if s := slot[pos[r]]; s >= 0 {
				sumG[s] += grad[r]
				sumH[s] += hess[r]
			}
		}

		if depth == b.params.MaxDepth {
			for s, nid := range frontier {
				t.Nodes[nid] = b.leaf(sumG[s], sumH[s])
			}
			break
		}

		best := make([][]split, len(features))
		err := b.runner.Run(ctx, len(features), func(_ context.Context, fi int) error {
			best[fi] = b.scan(features[fi], slot, pos, grad, hess, sumG, sumH)
			return nil
		})
		if err != nil {
			return Tree{}, err
		}

		var next []int
		for s, nid := range frontier {
			var choice split
			for fi := range features {
				c := best[fi][s]
				if c.valid && (!choice.valid || c.gain > choice.gain) {
					choice = c
				}
			}
			if !choice.valid || choice.gain <= minSplitGain {
				t.Nodes[nid] = b.leaf(sumG[s], sumH[s])
				continue
			}
			left := len(t.Nodes)
			t.Nodes = append(t.Nodes, Node{}, Node{})
			t.Nodes[nid] = Node{
				Feature:   choice.feature,
				Threshold: choice.threshold,
				Left:      left,
				Right:     left + 1,
				Gain:      choice.gain,
				Cover:     sumH[s],
			}
			next = append(next, left, left+1)
		}

		for r := 0; r < n; r++ {
			nd := &t.Nodes[pos[r]]
			if nd.Leaf {
				continue
			}
			if b.x[r][nd.Feature] < nd.Threshold {
				pos[r] = nd.Left
			} else {
				pos[r] = nd.Right
			}
		}
		frontier = next
	}
	return t, nil
}

// scan finds the best split of every frontier node on feature f.
func (b *builder) scan(f int, slot, pos []int, grad, hess, sumG, sumH []float64) []split {
	k := len(sumG)
	res := make([]split, k)
	gl := make([]float64, k)
	hl := make([]float64, k)
	last := make([]float64, k)
	seen := make([]bool, k)

	lambda, mcw := b.params.Lambda, b.params.MinChildWeight
	for _, r := range b.sorted[f] {
		s := slot[pos[r]]
		if s < 0 {
			continue
		}
		v := b.x[r][f]
		if seen[s] && v != last[s] {
			gr, hr := sumG[s]-gl[s], sumH[s]-hl[s]
			if hl[s] >= mcw && hr >= mcw {
				gain := score(gl[s], hl[s], lambda) + score(gr, hr, lambda) - score(sumG[s], sumH[s], lambda)
				if !res[s].valid || gain > res[s].gain {
					res[s] = split{valid: true, feature: f, threshold: midpoint(last[s], v), gain: gain}
				}
			}
		}
		gl[s] += grad[r]
		hl[s] += hess[r]
		last[s] = v
		seen[s] = true
	}
	return res
}

func (b *builder) leaf(g, h float64) Node {
	return Node{Leaf: true, Value: weight(g, h, b.params.Lambda) * b.params.LearningRate, Cover: h}
}

// score is the structure score G^2/(H+lambda).
func score(g, h, lambda float64) float64 {
	d := h + lambda
	if d <= 0 {
		return 0
	}
	return g * g / d
}

// weight is the optimal leaf weight -G/(H+lambda).
func weight(g, h, lambda float64) float64 {
	d := h + lambda
	if d <= 0 {
		return 0
	}
	return -g / d
}

// midpoint returns a threshold strictly above lo and at most hi.
func midpoint(lo, hi float64) float64 {
	m := lo + (hi-lo)/2
	if m <= lo {
		return hi
	}
	return m
}

package tree

// AggregateOptions controls the small-entry collapse.
type AggregateOptions struct {
	// Threshold is the weight below which children are folded into a
	// synthetic aggregate sibling. 0 disables aggregation entirely.
	Threshold int64

	// UsageMode selects Usage instead of Size as the folding weight.
	UsageMode bool

	// FoldSingle also folds a lone small child. Off by default: folding
	// a single entry renames it without reducing clutter.
	FoldSingle bool
}

// AggregateForest applies Collapse to every root of the forest.
func AggregateForest(forest Forest, opts AggregateOptions) {
	for _, root := range forest {
		Collapse(root, opts)
	}
}

// Collapse folds small children bottom-up. For every directory,
// children with weight below the threshold are removed and folded into one
// synthetic Aggregate sibling whose size and usage are the sum of the
// absorbed children. The parent's own totals are unchanged. The aggregate
// is kept even if its combined weight is still below the threshold;
// folding is one level deep per directory, never transitive.
func Collapse(n *Node, opts AggregateOptions) {
	if opts.Threshold <= 0 {
		return
	}
	aggregate(n, opts)
}

func aggregate(n *Node, opts AggregateOptions) {
	if n.Kind != Dir {
		return
	}

	for _, child := range n.Children {
		aggregate(child, opts)
	}

	var kept []*Node
	var folded []*Node
	for _, child := range n.Children {
		if child.Weight(opts.UsageMode) < opts.Threshold {
			folded = append(folded, child)
		} else {
			kept = append(kept, child)
		}
	}

	if len(folded) == 0 || (len(folded) == 1 && !opts.FoldSingle) {
		return
	}

	agg := &Node{
		Name:  AggregateName,
		Path:  n.Path,
		Kind:  Aggregate,
		Depth: n.Depth + 1,
	}
	for _, child := range folded {
		agg.Size += child.Size
		agg.Usage += child.Usage
	}

	n.Children = append(kept, agg)
}

package render

import (
	"encoding/json"

	"github.com/nachoparker/dutree/pkg/logger"
	"github.com/nachoparker/dutree/pkg/tree"
)

// nodeView is the machine-format projection of a tree node.
type nodeView struct {
	Name       string      `json:"name" yaml:"name"`
	Type       string      `json:"type" yaml:"type"`
	Size       int64       `json:"size" yaml:"size"`
	Usage      int64       `json:"usage" yaml:"usage"`
	Unreadable bool        `json:"unreadable,omitempty" yaml:"unreadable,omitempty"`
	Target     string      `json:"target,omitempty" yaml:"target,omitempty"`
	Children   []*nodeView `json:"children,omitempty" yaml:"children,omitempty"`
}

// document is the complete machine-format output.
type document struct {
	Roots      []*nodeView `json:"roots" yaml:"roots"`
	Statistics *stats      `json:"statistics,omitempty" yaml:"statistics,omitempty"`
}

func (f *formatter) buildDocument(forest tree.Forest) *document {
	doc := &document{
		Roots: make([]*nodeView, 0, len(forest)),
	}
	for _, root := range forest {
		doc.Roots = append(doc.Roots, f.convertNode(root))
	}
	if f.config.WithStats {
		doc.Statistics = calculateStats(forest)
	}
	return doc
}

// convertNode mirrors the tree format's view of the node: children come
// sorted and the depth cap applies, so both formats describe the same
// rendering.
func (f *formatter) convertNode(n *tree.Node) *nodeView {
	view := &nodeView{
		Name:       n.Name,
		Type:       n.Kind.String(),
		Size:       n.Size,
		Usage:      n.Usage,
		Unreadable: n.Unreadable,
		Target:     n.Target,
	}

	children := n.SortedChildren(f.config.UsageMode)
	if len(children) == 0 {
		return view
	}
	if f.config.Depth > 0 && children[0].Depth > f.config.Depth {
		return view
	}

	view.Children = make([]*nodeView, 0, len(children))
	for _, child := range children {
		view.Children = append(view.Children, f.convertNode(child))
	}

	return view
}

func (f *formatter) formatJSON(forest tree.Forest) (string, error) {
	bytes, err := json.MarshalIndent(f.buildDocument(forest), "", "  ")
	if err != nil {
		f.log.WithFields(logger.Fields{
			"error": err.Error(),
		}).Error("failed to marshal JSON")
		return "", err
	}
	return string(bytes), nil
}

// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"encoding/json"

	"github.com/taibuivan/inkwell/internal/core/entitlement"
	"github.com/taibuivan/inkwell/internal/core/node"
)

// View is a node as one viewer is allowed to see it.
//
// Collections hold the direct children by collection name. A Partial view
// keeps every collection key with an empty array.
type View struct {
	Node        *node.Node
	Decision    entitlement.Decision
	Collections map[string][]*node.Node
}

// MarshalJSON flattens the node document and adds its collections.
func (view *View) MarshalJSON() ([]byte, error) {
	document := view.Node.Document()
	for name, children := range view.Collections {
		if children == nil {
			children = []*node.Node{}
		}
		document[name] = children
	}
	return json.Marshal(document)
}

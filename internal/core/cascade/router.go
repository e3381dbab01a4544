// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cascade

import "github.com/taibuivan/inkwell/internal/core/node"

// Op is the write a node turns into.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
)

// Intent is the routed write for one node, not yet performed.
type Intent struct {
	Op   Op
	Kind node.Kind
	ID   int64
}

// Route decides between create and update from the id alone. No lookup by
// any other key is attempted, so a create-shaped document always inserts.
func Route(in *node.Input) Intent {
	if in.ID != nil {
		return Intent{Op: OpUpdate, Kind: in.Kind, ID: *in.ID}
	}
	return Intent{Op: OpCreate, Kind: in.Kind}
}

// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package node

import (
	"encoding/json"
	"maps"
	"time"
)

// # Domain Models

// Node is one persisted content row of any kind.
//
// Kind-specific columns (scene text, character age, cover images) live in
// Attributes so that every kind shares one storage layout.
type Node struct {
	Kind        Kind
	ID          int64
	AuthorID    int64
	ParentID    *int64
	Order       int
	Title       string
	Description string
	Public      bool
	Price       float64
	PublishDate *time.Time
	Attributes  map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Free reports whether the node costs nothing. It is always derived from Price.
func (n *Node) Free() bool {
	return n.Price <= 0
}

// Spec returns the kind configuration of the node.
func (n *Node) Spec() Spec {
	return MustLookup(n.Kind)
}

// Clone returns a copy that shares no mutable state with n.
func (n *Node) Clone() *Node {
	clone := *n
	if n.ParentID != nil {
		parentID := *n.ParentID
		clone.ParentID = &parentID
	}
	if n.PublishDate != nil {
		publishDate := *n.PublishDate
		clone.PublishDate = &publishDate
	}
	clone.Attributes = maps.Clone(n.Attributes)
	return &clone
}

// Document renders the node in the same flat shape clients submit:
// the parent key and title field use their per-kind names, attributes sit
// beside the core fields, and visibility fields appear only on kinds that own them.
func (n *Node) Document() map[string]any {
	spec := n.Spec()
	document := make(map[string]any, len(n.Attributes)+12)
	maps.Copy(document, n.Attributes)

	document["kind"] = n.Kind
	document["id"] = n.ID
	document["authorId"] = n.AuthorID
	document["order"] = n.Order
	document[spec.TitleField] = n.Title
	document["description"] = n.Description
	document["createdAt"] = n.CreatedAt
	document["updatedAt"] = n.UpdatedAt

	if spec.HasParent() {
		document[spec.ParentKey] = n.ParentID
	}
	if spec.Root {
		document["public"] = n.Public
	}
	if spec.Priced {
		document["price"] = n.Price
		document["free"] = n.Free()
	}
	if spec.Scheduled {
		document["publishDate"] = n.PublishDate
	}
	return document
}

// MarshalJSON encodes [Node.Document].
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Document())
}

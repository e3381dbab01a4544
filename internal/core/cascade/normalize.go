// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cascade turns a nested write document into create and update calls.

A document such as a Series carrying Books, each carrying Chapters, is walked
top-down: the parent is written first, then every child batch is rewritten
with the parent's id and a fresh sibling order before recursing.

# Components

  - Normalizer: per-kind defaults and relation stripping ([Normalize]).
  - Router: create versus update from the presence of an id ([Route]).
  - Coordinator: the depth-first walk ([Coordinator.Upsert]).
*/
package cascade

import (
	"math"
	"strings"

	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/internal/platform/validate"
	"github.com/taibuivan/inkwell/pkg/pointer"
	"github.com/taibuivan/inkwell/pkg/slug"
)

const (
	// MaxTitleLength bounds titles and names of every kind.
	MaxTitleLength = 500

	// MaxOrder is the largest sibling order the INTEGER ordinal column holds.
	MaxOrder = math.MaxInt32

	// MaxPrice is the largest price a NUMERIC(10,2) column holds.
	MaxPrice = 99999999.99

	attributeSlug = "slug"
)

// relationKeys are attribute names that describe materialized relations
// rather than stored columns: parent objects, parent keys, child collections,
// plus the title aliases already consumed by decoding. Lower-case.
var relationKeys = buildRelationKeys()

func buildRelationKeys() map[string]bool {
	keys := map[string]bool{
		"author":    true,
		"authorid":  true,
		"library":   true,
		"libraries": true,
		"title":     true,
		"name":      true,
	}

	for _, kind := range node.Kinds() {
		spec := node.MustLookup(kind)
		if spec.HasParent() {
			keys[strings.ToLower(string(spec.Parent))] = true
			keys[strings.ToLower(spec.ParentKey)] = true
		}
		for _, collection := range spec.Children {
			keys[strings.ToLower(collection.Name)] = true
		}
	}
	return keys
}

/*
Normalize applies the per-kind defaults to in.

Description: Fills the title from the kind placeholder for the 0-based sibling
index, defaults description, order, price and public, clears visibility fields
on kinds that do not own them, strips relation attributes, and derives a slug
on root kinds. Fields that cannot be defaulted are validated.

Returns:
  - error: VALIDATION_ERROR listing every failed field
*/
func Normalize(in *node.Input, index int) error {
	validator := &validate.Validator{}
	normalize(in, index, validator)
	return validator.Err()
}

func normalize(in *node.Input, index int, validator *validate.Validator) {
	spec := node.MustLookup(in.Kind)

	// 1. Display fields
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		in.Title = pointer.To(spec.Placeholder(index))
	}
	if in.Description == nil {
		in.Description = pointer.To("")
	}
	if in.Order == nil {
		in.Order = pointer.To(index + 1)
	}

	// 2. Visibility fields exist only on the kinds that own them
	if spec.Root {
		in.Public = pointer.To(pointer.Fallback(in.Public, false))
	} else {
		in.Public = nil
	}
	if spec.Priced {
		in.Price = pointer.To(pointer.Fallback(in.Price, 0))
	} else {
		in.Price = nil
	}
	if !spec.Scheduled {
		in.PublishDate = nil
	}

	// 3. Relations are materialized elsewhere, never stored as attributes
	if in.Attributes == nil {
		in.Attributes = map[string]any{}
	}
	for key, value := range in.Attributes {
		if relationKeys[strings.ToLower(key)] || isEmbeddedObject(value) {
			delete(in.Attributes, key)
		}
	}

	if spec.Root {
		if _, ok := in.Attributes[attributeSlug]; !ok {
			in.Attributes[attributeSlug] = slug.From(*in.Title)
		}
	}

	// 4. Hard rules
	validator.MaxLen(spec.TitleField, *in.Title, MaxTitleLength)
	validator.Text(spec.TitleField, *in.Title)
	validator.Text("description", *in.Description)
	validator.Min("order", *in.Order, 1)
	validator.Max("order", *in.Order, MaxOrder)
	if in.Price != nil {
		validator.Amount("price", *in.Price, MaxPrice)
	}
	for key, value := range in.Attributes {
		validator.Custom(key, containsNUL(key) || containsNUL(value), "Must not contain NUL characters")
	}
}

// containsNUL reports whether a string anywhere inside value holds a NUL character.
func containsNUL(value any) bool {
	switch typed := value.(type) {
	case string:
		return strings.ContainsRune(typed, 0)
	case []any:
		for _, item := range typed {
			if containsNUL(item) {
				return true
			}
		}
	case map[string]any:
		for key, item := range typed {
			if containsNUL(key) || containsNUL(item) {
				return true
			}
		}
	}
	return false
}

// isEmbeddedObject reports whether value is an object or an array holding objects.
func isEmbeddedObject(value any) bool {
	switch typed := value.(type) {
	case map[string]any:
		return true
	case []any:
		for _, item := range typed {
			if _, ok := item.(map[string]any); ok {
				return true
			}
		}
	}
	return false
}

// materialize converts a normalized input into the node handed to storage.
func materialize(in *node.Input) *node.Node {
	return &node.Node{
		Kind:        in.Kind,
		AuthorID:    pointer.Val(in.AuthorID),
		ParentID:    in.ParentID,
		Order:       pointer.Val(in.Order),
		Title:       pointer.Val(in.Title),
		Description: pointer.Val(in.Description),
		Public:      pointer.Val(in.Public),
		Price:       pointer.Val(in.Price),
		PublishDate: in.PublishDate,
		Attributes:  in.Attributes,
	}
}

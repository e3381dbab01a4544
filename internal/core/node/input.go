// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/inkwell/internal/platform/apperr"
	"github.com/taibuivan/inkwell/internal/platform/validate"
)

// Input is one node of a write document. Nil pointers mean "not supplied".
type Input struct {
	Kind        Kind
	ID          *int64
	AuthorID    *int64
	ParentID    *int64
	Order       *int
	Title       *string
	Description *string
	Public      *bool
	Price       *float64
	PublishDate *time.Time

	// Attributes holds every key that is not a core field or child collection.
	Attributes map[string]any

	// Children are keyed by child kind, in the order the kind table declares them.
	Children map[Kind][]*Input
}

// ignoredKeys are server-derived and never accepted from clients.
var ignoredKeys = map[string]bool{
	"kind":      true,
	"free":      true,
	"createdat": true,
	"updatedat": true,
}

// DecodeInput reads a JSON write document rooted at kind.
func DecodeInput(kind Kind, reader io.Reader) (*Input, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber()

	var document map[string]any
	if err := decoder.Decode(&document); err != nil {
		return nil, decodeError(err)
	}
	if document == nil {
		return nil, validate.ErrInvalidJSON
	}

	// Exactly one document; anything after it but whitespace is rejected
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, decodeError(err)
	}

	validator := &validate.Validator{}
	input := FromMap(kind, document, validator)
	if err := validator.Err(); err != nil {
		return nil, err
	}
	return input, nil
}

// decodeError maps a read failure to the client error. A body cut off by
// http.MaxBytesReader is too large rather than malformed.
func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.PayloadTooLarge(tooLarge.Limit)
	}
	return validate.ErrInvalidJSON
}

/*
FromMap converts a decoded JSON object into an [Input] for kind.

Field errors are collected on validator with their document path, so a single
pass reports every malformed field in the tree.
*/
func FromMap(kind Kind, document map[string]any, validator *validate.Validator) *Input {
	spec, ok := Lookup(kind)
	if !ok {
		validator.Custom("kind", true, fmt.Sprintf("Unknown kind %q", kind))
		return nil
	}

	input := &Input{Kind: kind, Attributes: map[string]any{}}
	parentKey := strings.ToLower(spec.ParentKey)
	titleKey := strings.ToLower(spec.TitleField)

	for key, value := range document {
		lower := strings.ToLower(key)

		switch {
		case ignoredKeys[lower]:
			continue

		case lower == "id":
			input.ID = readInt64(validator, key, value)

		case lower == "authorid":
			input.AuthorID = readInt64(validator, key, value)

		case parentKey != "" && lower == parentKey:
			input.ParentID = readInt64(validator, key, value)

		case lower == "order":
			if order := readInt64(validator, key, value); order != nil {
				asInt := int(*order)
				input.Order = &asInt
			}

		case lower == titleKey || (lower == "title" || lower == "name") && input.Title == nil:
			input.Title = readString(validator, key, value)

		case lower == "description":
			input.Description = readString(validator, key, value)

		case lower == "public":
			input.Public = readBool(validator, key, value)

		case lower == "price":
			input.Price = readFloat(validator, key, value)

		case lower == "publishdate":
			input.PublishDate = readTime(validator, key, value)

		default:
			if collection, ok := spec.Collection(key); ok {
				input.addChildren(collection, key, value, validator)
				continue
			}
			input.Attributes[key] = value
		}
	}

	return input
}

func (input *Input) addChildren(collection Collection, key string, value any, validator *validate.Validator) {
	if value == nil {
		return
	}

	items, ok := value.([]any)
	if !ok {
		validator.Custom(key, true, "Must be an array of objects")
		return
	}

	if input.Children == nil {
		input.Children = map[Kind][]*Input{}
	}

	children := make([]*Input, 0, len(items))
	for index, item := range items {
		document, ok := item.(map[string]any)
		if !ok {
			validator.Custom(fmt.Sprintf("%s[%d]", collection.Name, index), true, "Must be an object")
			continue
		}

		nested := &validate.Validator{}
		child := FromMap(collection.Kind, document, nested)
		validator.Merge(fmt.Sprintf("%s[%d]", collection.Name, index), nested)
		if child != nil {
			children = append(children, child)
		}
	}
	input.Children[collection.Kind] = children
}

// Count returns the number of nodes in the subtree rooted at input.
func (input *Input) Count() int {
	total := 1
	for _, children := range input.Children {
		for _, child := range children {
			total += child.Count()
		}
	}
	return total
}

// # Field Readers

func readInt64(validator *validate.Validator, key string, value any) *int64 {
	if value == nil {
		return nil
	}

	var parsed int64
	var err error
	switch typed := value.(type) {
	case json.Number:
		parsed, err = typed.Int64()
	case float64:
		parsed = int64(typed)
		if float64(parsed) != typed {
			err = fmt.Errorf("not an integer")
		}
	case int64:
		parsed = typed
	case int:
		parsed = int64(typed)
	default:
		err = fmt.Errorf("unexpected %T", value)
	}

	if err != nil {
		validator.Custom(key, true, "Must be an integer")
		return nil
	}
	return &parsed
}

func readFloat(validator *validate.Validator, key string, value any) *float64 {
	if value == nil {
		return nil
	}

	var parsed float64
	var err error
	switch typed := value.(type) {
	case json.Number:
		parsed, err = typed.Float64()
	case float64:
		parsed = typed
	case int:
		parsed = float64(typed)
	default:
		err = fmt.Errorf("unexpected %T", value)
	}

	if err != nil {
		validator.Custom(key, true, "Must be a number")
		return nil
	}
	return &parsed
}

func readString(validator *validate.Validator, key string, value any) *string {
	if value == nil {
		return nil
	}
	text, ok := value.(string)
	if !ok {
		validator.Custom(key, true, "Must be a string")
		return nil
	}
	return &text
}

func readBool(validator *validate.Validator, key string, value any) *bool {
	if value == nil {
		return nil
	}
	flag, ok := value.(bool)
	if !ok {
		validator.Custom(key, true, "Must be a boolean")
		return nil
	}
	return &flag
}

func readTime(validator *validate.Validator, key string, value any) *time.Time {
	text := readString(validator, key, value)
	if text == nil {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, *text)
	if err != nil {
		validator.Custom(key, true, "Must be an RFC 3339 timestamp")
		return nil
	}
	utc := parsed.UTC()
	return &utc
}

// errUnknownKind is returned by repositories handed a kind missing from the table.
func errUnknownKind(kind Kind) error {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   "kind",
		Message: fmt.Sprintf("Unknown kind %q", kind),
	})
}

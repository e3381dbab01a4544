// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/taibuivan/inkwell/internal/core/node"
)

// printResult writes data as JSON, or the text line, depending on the format flag.
func printResult(writer io.Writer, opts *RootOptions, data any, text string) error {
	if opts.Format == "json" {
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}
	_, err := fmt.Fprintln(writer, text)
	return err
}

// parseKind accepts a kind name ("Book") or its URL path ("books").
func parseKind(raw string) (node.Kind, error) {
	if kind, ok := node.ByPath(strings.ToLower(raw)); ok {
		return kind, nil
	}
	for _, kind := range node.Kinds() {
		if strings.EqualFold(string(kind), raw) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown kind %q", raw)
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package jsonutil recovers JSON objects from messy model output.
//
// # Description
//
// Completion services frequently wrap JSON in prose, use single quotes, or
// leave keys unquoted. ParseObject applies a layered recovery chain: strict
// parse, then brace-delimited extraction, then quote and key normalization.
// Each layer runs only if the previous one failed. Unrecoverable input yields
// nil rather than an error, so callers can treat "no object" as a normal
// degraded outcome.
//
// # Thread Safety
//
// All functions are pure and safe for concurrent use.
package jsonutil

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// bracePattern captures the widest {...} span, including newlines.
	bracePattern = regexp.MustCompile(`(?s)(\{.*\})`)

	// unquotedKeyPattern matches bare identifiers in key position.
	unquotedKeyPattern = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// ParseObject extracts a JSON object from text.
//
// # Description
//
// Tries, in order: strict json.Unmarshal, extraction of the outermost
// brace-delimited span, then the same candidates with single quotes replaced
// by double quotes and unquoted keys quoted. The first layer that yields a
// valid object wins.
//
// # Inputs
//
//   - text: Raw model output that may contain a JSON object.
//
// # Outputs
//
//   - map[string]any: The parsed object, or nil if no layer succeeded.
//
// # Limitations
//
//   - Only objects are recovered; top-level arrays return nil.
//   - Quote normalization can corrupt string values that legitimately contain
//     single quotes. It is the last resort for that reason.
func ParseObject(text string) map[string]any {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	// Layer 1: strict parse.
	if obj := tryUnmarshal(text); obj != nil {
		return obj
	}

	// Layer 2: brace-delimited extraction.
	candidate := ""
	if m := bracePattern.FindStringSubmatch(text); m != nil {
		candidate = m[1]
		if obj := tryUnmarshal(candidate); obj != nil {
			return obj
		}
	}

	// Layer 3: quote and key normalization, on the whole text first, then on
	// the extracted candidate.
	if obj := tryUnmarshal(normalize(text)); obj != nil {
		return obj
	}
	if candidate != "" {
		if obj := tryUnmarshal(normalize(candidate)); obj != nil {
			return obj
		}
	}

	return nil
}

// ParseStringMap is ParseObject restricted to string values.
//
// Non-string values are dropped. Returns nil when ParseObject does.
func ParseStringMap(text string) map[string]string {
	obj := ParseObject(text)
	if obj == nil {
		return nil
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func tryUnmarshal(text string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil
	}
	return obj
}

func normalize(text string) string {
	fixed := strings.ReplaceAll(text, "'", `"`)
	return unquotedKeyPattern.ReplaceAllString(fixed, `$1"$2":`)
}

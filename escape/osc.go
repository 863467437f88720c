// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package escape

import (
	"strconv"
	"strings"
)

// oscDispatch decodes an accumulated OSC payload of the form
// "Ps;Pt..." into actions.
func oscDispatch(buf []byte, emit func(Action), ignored func(kind string, final byte)) {
	s := string(buf)
	code, rest, _ := strings.Cut(s, ";")
	n, err := strconv.Atoi(code)
	if err != nil {
		ignored("osc", 0)
		return
	}

	switch n {
	case 0, 2:
		emit(SetTitle{Title: rest})
	case 1:
		// Icon name only; not surfaced.
	case 4:
		oscPalette(rest, emit, ignored)
	case 8:
		oscHyperlink(rest, emit)
	case 10:
		oscDynamicColor(-1, rest, emit)
	case 11:
		oscDynamicColor(-2, rest, emit)
	case 104:
		if rest == "" {
			emit(ResetColors{All: true})
			return
		}
		for _, part := range strings.Split(rest, ";") {
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx > 255 {
				ignored("osc", 0)
				continue
			}
			emit(ResetColors{Index: idx})
		}
	case 110:
		emit(ResetColors{Index: -1})
	case 111:
		emit(ResetColors{Index: -2})
	default:
		ignored("osc", 0)
	}
}

// oscPalette handles OSC 4: repeating index;spec pairs. A spec of "?"
// queries instead of sets.
func oscPalette(rest string, emit func(Action), ignored func(kind string, final byte)) {
	parts := strings.Split(rest, ";")
	for i := 0; i+1 < len(parts); i += 2 {
		idx, err := strconv.Atoi(parts[i])
		if err != nil || idx < 0 || idx > 255 {
			ignored("osc", 0)
			continue
		}
		if parts[i+1] == "?" {
			emit(QueryColor{Index: idx})
		} else {
			emit(SetPaletteColor{Index: idx, Spec: parts[i+1]})
		}
	}
}

// oscDynamicColor handles OSC 10/11 for the default foreground (-1)
// and background (-2).
func oscDynamicColor(index int, rest string, emit func(Action)) {
	if rest == "?" {
		emit(QueryColor{Index: index})
		return
	}
	if rest != "" {
		emit(SetPaletteColor{Index: index, Spec: rest})
	}
}

// oscHyperlink handles OSC 8: "params;uri" where params is a
// colon-separated key=value list ("id=..." is the one we use).
func oscHyperlink(rest string, emit func(Action)) {
	params, uri, ok := strings.Cut(rest, ";")
	if !ok {
		return
	}
	var id string
	for _, kv := range strings.Split(params, ":") {
		if v, found := strings.CutPrefix(kv, "id="); found {
			id = v
		}
	}
	emit(SetHyperlink{ID: id, URI: uri})
}

// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package node defines the content hierarchy shared by every Inkwell tree.

Series, books, worlds, explorations and all their descendants are stored the
same way: one row per node, one table per kind, one parent column. Instead of a
module per entity, a single [Repository] is specialised by the kind table in
this file.

# Hierarchies

  - Library: Series -> Book -> Chapter -> Scene
  - World: World -> {Timeline -> Event, TimelineEvent; Location; PopulationGroup; Character}
  - Exploration: Exploration -> ExplorationScene

Root kinds (Series, Book, World, Exploration) carry their own visibility. All
other kinds inherit it from their gating ancestor.
*/
package node

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/taibuivan/inkwell/internal/platform/database/schema"
)

// Kind names one node type.
type Kind string

const (
	KindSeries           Kind = "Series"
	KindBook             Kind = "Book"
	KindChapter          Kind = "Chapter"
	KindScene            Kind = "Scene"
	KindWorld            Kind = "World"
	KindTimeline         Kind = "Timeline"
	KindEvent            Kind = "Event"
	KindTimelineEvent    Kind = "TimelineEvent"
	KindLocation         Kind = "Location"
	KindPopulationGroup  Kind = "PopulationGroup"
	KindCharacter        Kind = "Character"
	KindExploration      Kind = "Exploration"
	KindExplorationScene Kind = "ExplorationScene"
)

// Collection is a named child array on a parent document, e.g. "Books" on a Series.
type Collection struct {
	Name string
	Kind Kind
}

// Spec is the per-kind configuration row.
type Spec struct {
	Kind Kind

	// Path is the URL segment used by the transport layer.
	Path string

	Table schema.ContentNodeTable

	// Parent is the kind of the direct parent; empty for top-level kinds.
	Parent Kind
	// ParentKey is the JSON field holding the parent id, e.g. "bookId".
	ParentKey string
	// ParentOptional is set for roots that may also live under a parent (Book in Series).
	ParentOptional bool

	// Root kinds carry public; Priced kinds carry price; Scheduled kinds carry publishDate.
	Root      bool
	Priced    bool
	Scheduled bool

	// TitleField is the JSON name of the display title ("title" or "name").
	TitleField string

	// Gate is the kind whose flags decide visibility. Roots gate themselves.
	Gate Kind

	Children []Collection

	placeholder string
}

var specs = map[Kind]*Spec{
	KindSeries: {
		Kind: KindSeries, Path: "series", Table: schema.ContentSeries,
		Root: true, Priced: true, Scheduled: true, TitleField: "title", Gate: KindSeries,
		Children:    []Collection{{"Books", KindBook}},
		placeholder: "Untitled Series",
	},
	KindBook: {
		Kind: KindBook, Path: "books", Table: schema.ContentBook,
		Parent: KindSeries, ParentKey: "seriesId", ParentOptional: true,
		Root: true, Priced: true, Scheduled: true, TitleField: "title", Gate: KindBook,
		Children:    []Collection{{"Chapters", KindChapter}},
		placeholder: "Untitled Book",
	},
	KindChapter: {
		Kind: KindChapter, Path: "chapters", Table: schema.ContentChapter,
		Parent: KindBook, ParentKey: "bookId", TitleField: "title", Gate: KindBook,
		Children:    []Collection{{"Scenes", KindScene}},
		placeholder: "Chapter %d",
	},
	KindScene: {
		Kind: KindScene, Path: "scenes", Table: schema.ContentScene,
		Parent: KindChapter, ParentKey: "chapterId", TitleField: "title", Gate: KindBook,
		placeholder: "Untitled Scene",
	},
	KindWorld: {
		Kind: KindWorld, Path: "worlds", Table: schema.ContentWorld,
		Root: true, TitleField: "name", Gate: KindWorld,
		Children: []Collection{
			{"Timelines", KindTimeline},
			{"Locations", KindLocation},
			{"PopulationGroups", KindPopulationGroup},
			{"Characters", KindCharacter},
		},
		placeholder: "Untitled World",
	},
	KindTimeline: {
		Kind: KindTimeline, Path: "timelines", Table: schema.ContentTimeline,
		Parent: KindWorld, ParentKey: "worldId", TitleField: "title", Gate: KindWorld,
		Children: []Collection{
			{"Events", KindEvent},
			{"TimelineEvents", KindTimelineEvent},
		},
		placeholder: "Timeline %d",
	},
	KindEvent: {
		Kind: KindEvent, Path: "events", Table: schema.ContentEvent,
		Parent: KindTimeline, ParentKey: "timelineId", TitleField: "title", Gate: KindWorld,
		placeholder: "Untitled Event",
	},
	KindTimelineEvent: {
		Kind: KindTimelineEvent, Path: "timeline-events", Table: schema.ContentTimelineEvent,
		Parent: KindTimeline, ParentKey: "timelineId", TitleField: "title", Gate: KindWorld,
		placeholder: "Untitled Event",
	},
	KindLocation: {
		Kind: KindLocation, Path: "locations", Table: schema.ContentLocation,
		Parent: KindWorld, ParentKey: "worldId", TitleField: "name", Gate: KindWorld,
		placeholder: "Unnamed Location",
	},
	KindPopulationGroup: {
		Kind: KindPopulationGroup, Path: "population-groups", Table: schema.ContentPopulationGroup,
		Parent: KindWorld, ParentKey: "worldId", TitleField: "name", Gate: KindWorld,
		placeholder: "Unnamed Group",
	},
	KindCharacter: {
		Kind: KindCharacter, Path: "characters", Table: schema.ContentCharacter,
		Parent: KindWorld, ParentKey: "worldId", TitleField: "name", Gate: KindWorld,
		placeholder: "Unnamed Character",
	},
	KindExploration: {
		Kind: KindExploration, Path: "explorations", Table: schema.ContentExploration,
		Root: true, Priced: true, Scheduled: true, TitleField: "title", Gate: KindExploration,
		Children:    []Collection{{"Scenes", KindExplorationScene}},
		placeholder: "Untitled Exploration",
	},
	KindExplorationScene: {
		Kind: KindExplorationScene, Path: "exploration-scenes", Table: schema.ContentExplorationScene,
		Parent: KindExploration, ParentKey: "explorationId", TitleField: "title", Gate: KindExploration,
		placeholder: "Scene %d",
	},
}

// ordered lists kinds top-down, one tree after another.
var ordered = []Kind{
	KindSeries, KindBook, KindChapter, KindScene,
	KindWorld, KindTimeline, KindEvent, KindTimelineEvent, KindLocation, KindPopulationGroup, KindCharacter,
	KindExploration, KindExplorationScene,
}

// Kinds returns every known kind in hierarchy order.
func Kinds() []Kind {
	out := make([]Kind, len(ordered))
	copy(out, ordered)
	return out
}

// Lookup returns the configuration for kind.
func Lookup(kind Kind) (Spec, bool) {
	spec, ok := specs[kind]
	if !ok {
		return Spec{}, false
	}
	return *spec, true
}

// MustLookup is [Lookup] for kinds known at compile time.
func MustLookup(kind Kind) Spec {
	spec, ok := Lookup(kind)
	if !ok {
		panic(fmt.Sprintf("node: unknown kind %q", kind))
	}
	return spec
}

// ByPath resolves a URL segment such as "timeline-events" to its kind.
func ByPath(path string) (Kind, bool) {
	for _, kind := range ordered {
		if specs[kind].Path == path {
			return kind, true
		}
	}
	return "", false
}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	_, ok := specs[k]
	return ok
}

// Placeholder returns the deterministic default title for the sibling at the
// given 0-based index.
func (s Spec) Placeholder(index int) string {
	if strings.Contains(s.placeholder, "%d") {
		return fmt.Sprintf(s.placeholder, index+1)
	}
	return s.placeholder
}

// HasParent reports whether the kind can reference a parent row at all.
func (s Spec) HasParent() bool {
	return s.Parent != ""
}

// Collection finds the child collection whose name matches case-insensitively.
func (s Spec) Collection(name string) (Collection, bool) {
	for _, collection := range s.Children {
		if strings.EqualFold(collection.Name, name) {
			return collection, true
		}
	}
	return Collection{}, false
}

// IsPurchasable reports whether a library record may target the kind.
func (s Spec) IsPurchasable() bool {
	return s.Root && s.Priced
}

// Resource returns the lower-case display name used in error messages,
// e.g. "timeline event".
func (k Kind) Resource() string {
	var builder strings.Builder
	for index, r := range string(k) {
		if index > 0 && unicode.IsUpper(r) {
			builder.WriteByte(' ')
		}
		builder.WriteRune(unicode.ToLower(r))
	}
	return builder.String()
}

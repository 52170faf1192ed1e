package models

import (
	"sort"
	"strings"

	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/types"
)

// Sort names recognized by LibraryWithFilters (§4.7).
const (
	SortLastWatched  = "LastWatched"
	SortTimesWatched = "TimesWatched"
	SortName         = "Name"
)

// libraryPredicate narrows a LibBucket down to the subset a given
// LibraryWithFilters instance projects (§4.7: ContinueWatchingFilter,
// NotRemovedFilter).
type libraryPredicate func(types.LibItem) bool

// ContinueWatchingFilter keeps items with is_in_continue_watching (§4.7).
func ContinueWatchingFilter(item types.LibItem) bool { return item.IsInContinueWatching() }

// NotRemovedFilter keeps every non-removed item (§4.7).
func NotRemovedFilter(item types.LibItem) bool { return !item.Removed }

// LibraryWithFilters is the generic library-browsing model (§4.7): it
// recomputes its projection on Load or whenever the library bucket
// changes, rather than issuing any transport request of its own — every
// field it needs already lives in the locally-synced LibBucket.
type LibraryWithFilters struct {
	predicate libraryPredicate
	name      string
	matchLoad func(msg.Msg) (typeName, sortName string, ok bool)

	SelectedType    string
	SelectedSort    string
	SelectableTypes []string
	Items           []types.LibItem
}

func newLibraryWithFilters(name string, predicate libraryPredicate, matchLoad func(msg.Msg) (string, string, bool)) LibraryWithFilters {
	return LibraryWithFilters{predicate: predicate, name: name, matchLoad: matchLoad, SelectedSort: SortLastWatched}
}

// NewLibraryWithFilters builds the general "library" browsing model driven
// by ActionLoadLibraryWithFilters (§4.7).
func NewLibraryWithFilters() LibraryWithFilters {
	return newLibraryWithFilters("LibraryWithFilters", NotRemovedFilter, func(m msg.Msg) (string, string, bool) {
		a, ok := m.(msg.ActionLoadLibraryWithFilters)
		if !ok {
			return "", "", false
		}
		sortName := a.Sort
		if sortName == "" {
			sortName = SortLastWatched
		}
		return a.Type, sortName, true
	})
}

// NewContinueWatching builds the "continue watching" shelf model driven by
// ActionLoadContinueWatching (§4.7), always sorted by LastWatched desc and
// never filtered by type.
func NewContinueWatching() LibraryWithFilters {
	return newLibraryWithFilters("ContinueWatching", ContinueWatchingFilter, func(m msg.Msg) (string, string, bool) {
		if _, ok := m.(msg.ActionLoadContinueWatching); !ok {
			return "", "", false
		}
		return "", SortLastWatched, true
	})
}

// Update applies m to l given the current library bucket.
func (l *LibraryWithFilters) Update(bucket types.LibBucket, m msg.Msg) bool {
	if typeName, sortName, ok := l.matchLoad(m); ok {
		l.SelectedType = typeName
		l.SelectedSort = sortName
		l.recompute(bucket)
		return true
	}

	switch m.(type) {
	case msg.InternalLibraryChanged:
		l.recompute(bucket)
		return true
	case msg.ActionUnload:
		a := m.(msg.ActionUnload)
		if a.Model != "" && a.Model != l.name {
			return false
		}
		l.SelectedType = ""
		l.Items = nil
		l.SelectableTypes = nil
		return true
	default:
		return false
	}
}

// recompute rebuilds SelectableTypes and Items from bucket per §4.7.
func (l *LibraryWithFilters) recompute(bucket types.LibBucket) {
	var base []types.LibItem
	for _, item := range bucket.Items {
		if l.predicate(item) {
			base = append(base, item)
		}
	}

	var allTypes []string
	for _, item := range base {
		allTypes = append(allTypes, item.Type)
	}
	l.SelectableTypes = sortTypesByPriority(dedupStrings(allTypes))

	var filtered []types.LibItem
	for _, item := range base {
		if l.SelectedType != "" && item.Type != l.SelectedType {
			continue
		}
		filtered = append(filtered, item)
	}
	sortLibItems(filtered, l.SelectedSort)
	l.Items = filtered
}

func sortLibItems(items []types.LibItem, sortName string) {
	switch sortName {
	case SortTimesWatched:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].State.TimesWatched > items[j].State.TimesWatched
		})
	case SortName:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
		})
	default: // SortLastWatched
		sort.SliceStable(items, func(i, j int) bool {
			return lastWatchedOf(items[i]) > lastWatchedOf(items[j])
		})
	}
}

func lastWatchedOf(item types.LibItem) int64 {
	if item.State.LastWatched == nil {
		return 0
	}
	return int64(*item.State.LastWatched)
}

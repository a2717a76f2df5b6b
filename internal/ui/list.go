package ui

import (
	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/songdash/internal/models"
)

var _ list.Item = facetItem{}

// facetItem wraps one facet value to implement [list.Item].
type facetItem struct {
	value    string
	selected bool
}

func (i facetItem) FilterValue() string { return i.value }
func (i facetItem) Title() string {
	if i.selected {
		return "● " + i.value
	}
	return i.value
}
func (i facetItem) Description() string {
	if i.value == models.Sentinel {
		return "no constraint"
	}
	return ""
}

func facetItems(set models.FacetSet, current string) []list.Item {
	items := make([]list.Item, len(set.Values))
	for i, v := range set.Values {
		items[i] = facetItem{value: v, selected: v == current || (models.IsSentinel(current) && v == models.Sentinel)}
	}
	return items
}

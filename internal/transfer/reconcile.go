package transfer

import (
	"sort"

	"github.com/Kavinesh-C/Forensic-Auto-Carver-Pro/internal/models"
)

// NewItems returns the names present in cur but not in prev, sorted.
// Used after a batch to tell the operator what actually landed, which
// can differ from what was sent when the server renames or unpacks.
func NewItems(prev, cur models.Inventory) []string {
	var names []string
	for name := range cur {
		if _, ok := prev[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

package services

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/yeremiapane/camarero-fulfillment/database"
	"github.com/yeremiapane/camarero-fulfillment/models"
)

// MenuLookup reads the live catalog inside the submission transaction.
type MenuLookup struct{}

// FetchMenuItemWithModifiers returns the item with its groups and only the
// available options, both ordered by position.
func (MenuLookup) FetchMenuItemWithModifiers(tx database.Tx, menuItemID string) (*models.MenuItem, error) {
	item, err := tx.FetchMenuItemWithModifiers(menuItemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFound("menu item %s not found", menuItemID)
	}
	if err != nil {
		return nil, Internal(err, "failed to load menu item")
	}

	sort.SliceStable(item.ModifierGroups, func(i, j int) bool {
		return item.ModifierGroups[i].Position < item.ModifierGroups[j].Position
	})
	for gi := range item.ModifierGroups {
		opts := item.ModifierGroups[gi].Options[:0]
		for _, o := range item.ModifierGroups[gi].Options {
			if o.IsAvailable {
				opts = append(opts, o)
			}
		}
		sort.SliceStable(opts, func(i, j int) bool { return opts[i].Position < opts[j].Position })
		item.ModifierGroups[gi].Options = opts
	}
	return item, nil
}

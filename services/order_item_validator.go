package services

import (
	"github.com/yeremiapane/camarero-fulfillment/models"
)

// ResolvedSelection is a selected option together with the group it belongs to.
type ResolvedSelection struct {
	Group  models.ModifierGroup
	Option models.ModifierOption
}

// OrderItemValidator checks one submitted line against the live catalog.
type OrderItemValidator struct{}

// Validate checks ownership, availability and every group's selection rules.
// menuItem must come from MenuLookup so that it carries only available options.
// Selections are returned in the order they were submitted.
func (OrderItemValidator) Validate(menuItem *models.MenuItem, businessID string, selectedOptionIDs []string) ([]ResolvedSelection, error) {
	if menuItem.BusinessID != businessID {
		return nil, BadRequest("menu item %s does not belong to this business", menuItem.ID)
	}
	if !menuItem.IsAvailable {
		return nil, BadRequest("menu item %q is not available", menuItem.Name)
	}

	seen := make(map[string]bool, len(selectedOptionIDs))
	counts := make(map[string]int, len(menuItem.ModifierGroups))
	selections := make([]ResolvedSelection, 0, len(selectedOptionIDs))

	for _, optionID := range selectedOptionIDs {
		if seen[optionID] {
			return nil, BadRequest("modifier option %s selected more than once for %q", optionID, menuItem.Name)
		}
		seen[optionID] = true

		sel, ok := findOption(menuItem.ModifierGroups, optionID)
		if !ok {
			return nil, BadRequest("modifier option %s is not valid or not available for %q", optionID, menuItem.Name)
		}
		if sel.Option.GroupID != sel.Group.ID {
			return nil, Internal(nil, "modifier option "+sel.Option.ID+" is attached to the wrong group")
		}
		counts[sel.Group.ID]++
		selections = append(selections, sel)
	}

	for _, group := range menuItem.ModifierGroups {
		count := counts[group.ID]
		if group.IsRequired && count < group.MinSelections {
			return nil, BadRequest("modifier group %q of %q requires at least %d selection(s)", group.Name, menuItem.Name, group.MinSelections)
		}
		if limit := group.EffectiveMaxSelections(); count > limit {
			if group.SelectionType == models.SelectionRadio && count > 1 {
				return nil, BadRequest("modifier group %q of %q allows only one selection", group.Name, menuItem.Name)
			}
			return nil, BadRequest("modifier group %q of %q allows at most %d selection(s)", group.Name, menuItem.Name, limit)
		}
	}

	return selections, nil
}

func findOption(groups []models.ModifierGroup, optionID string) (ResolvedSelection, bool) {
	for _, group := range groups {
		for _, option := range group.Options {
			if option.ID == optionID {
				return ResolvedSelection{Group: group, Option: option}, true
			}
		}
	}
	return ResolvedSelection{}, false
}

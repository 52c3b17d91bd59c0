package controllers

import (
	"strings"

	"github.com/yeremiapane/camarero-fulfillment/models"
	"github.com/yeremiapane/camarero-fulfillment/services"
)

// parseStatuses reads a comma separated status list. Empty input yields nil.
func parseStatuses(raw string) ([]models.OrderItemStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []models.OrderItemStatus
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		status, ok := models.ParseOrderItemStatus(strings.ToUpper(part))
		if !ok {
			return nil, services.BadRequest("unknown order item status %q", part)
		}
		out = append(out, status)
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

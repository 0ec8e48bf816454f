package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dlnilsson/repro-wizard/pkg/menu"
	"github.com/dlnilsson/repro-wizard/pkg/ui"
)

const menuSentinel = "menu"

// pickItem maps the -m / -model-index flags to a menu entry. A bare -m opens
// the interactive picker; a numeric value is taken as an index even when it
// is out of range so the controller can report the missing model.
func pickItem(mFlag string, modelIndex int, items []menu.Item, interactive func([]menu.Item) (menu.Item, error)) (string, error) {
	if modelIndex >= 0 {
		return menu.ItemID(modelIndex), nil
	}
	candidate := strings.TrimSpace(mFlag)
	switch {
	case candidate == "":
		if len(items) == 0 {
			return "", fmt.Errorf("no models configured")
		}
		return items[0].ID, nil
	case candidate == menuSentinel:
		item, err := interactive(items)
		if err != nil {
			return "", err
		}
		return item.ID, nil
	}
	if idx, err := strconv.Atoi(candidate); err == nil {
		return menu.ItemID(idx), nil
	}
	for _, item := range items {
		if strings.EqualFold(item.Title, candidate) {
			return item.ID, nil
		}
	}
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, strconv.Quote(item.Title))
	}
	return "", fmt.Errorf(errInvalidModelFmt, candidate, strings.Join(titles, ", "))
}

func interactivePicker(items []menu.Item) (menu.Item, error) {
	return ui.SelectMenuItem(menu.RootTitle, items)
}

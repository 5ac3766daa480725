package heuristics

import (
	"strings"

	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// scanState tracks the line-item scanner. A "net price" header switches the
// scanner into price collection; standalone decimal lines are then gathered
// into a price list that is back-filled positionally after the scan.
type scanState int

const (
	stateIdle scanState = iota
	stateAccumulating
	stateCollectingPrices
)

// keywords that stop description continuation for the current item
var continuationStop = []string{"summary", "vat", "net price", "gross", "client", "$"}

// scanLineItems extracts numbered line items ("<N>. <description> <qty>").
// A leading ordinal closes the previous item and opens a new one; plain lines
// in between are treated as word-wrapped description text; "summary" or end
// of input closes the last item.
func scanLineItems(lines []string) []entity.LineItem {
	var items []entity.LineItem
	var current *entity.LineItem
	var netPrices []float64
	state := stateIdle

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		lower := strings.ToLower(line)

		switch {
		case reItemStart.MatchString(line):
			if current != nil {
				items = append(items, *current)
			}
			current = openItem(line)
			if state == stateIdle {
				state = stateAccumulating
			}

		case current != nil && !reDecimal.MatchString(line) && !containsAny(lower, continuationStop):
			current.Description += " " + line

		case strings.Contains(lower, "net price"):
			state = stateCollectingPrices

		case state == stateCollectingPrices && reDecimalOnly.MatchString(line):
			netPrices = append(netPrices, parseDecimal(line))

		case current != nil && (strings.Contains(lower, "summary") || i == len(lines)-1):
			items = append(items, *current)
			current = nil
		}
	}
	if current != nil {
		items = append(items, *current)
	}

	// unit prices are positional: item i gets collected price i
	for idx := range items {
		if idx < len(netPrices) {
			items[idx].UnitPrice = entity.Float64Ptr(netPrices[idx])
		}
	}
	return items
}

// openItem parses a numbered item line. The strict pattern splits a trailing
// quantity off the description; otherwise any decimal-shaped substring is
// stripped out as the quantity, defaulting to 1.
func openItem(line string) *entity.LineItem {
	if m := reItemStrict.FindStringSubmatch(line); m != nil {
		return &entity.LineItem{
			Description: strings.TrimSpace(m[1]),
			Quantity:    parseDecimal(m[2]),
		}
	}

	rest := strings.TrimSpace(line[strings.Index(line, ".")+1:])
	qty := 1.0
	if m := reDecimal.FindString(rest); m != "" {
		qty = parseDecimal(m)
	}
	desc := strings.TrimSpace(reDecimal.ReplaceAllString(rest, ""))
	return &entity.LineItem{Description: desc, Quantity: qty}
}

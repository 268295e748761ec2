package portal

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Column layout of the maintenance-items table. The portal renders at least
// five data cells per row; the sixth, when present, holds the pending action
// control.
const (
	minItemCells      = 5
	nameCellIndex     = 1
	reasonCellIndex   = 2
	createdCellIndex  = 3
	deliveryCellIndex = 4
	actionCellIndex   = 5
)

// itemHeaderTokens identify the items table by content, not position; the
// portal moves the table around between layouts.
var itemHeaderTokens = []string{"Item", "Reason", "Date Created"}

// ParseItems locates the maintenance-items table by its header signature and
// returns its line items in row order. A page without a matching table
// yields nil: jobs can legitimately have no items yet, and an unexpected
// layout degrades to an empty list rather than an error.
func ParseItems(doc *goquery.Document) []LineItem {
	table := findItemsTable(doc)
	if table == nil {
		return nil
	}

	var items []LineItem
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("th").Length() > 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < minItemCells {
			return
		}
		name := strings.TrimSpace(cells.Eq(nameCellIndex).Text())
		if name == "" || strings.Contains(name, "Select") {
			// Empty or unselected-option placeholder rows are not items.
			return
		}
		deliveryInfo := squashSpace(cells.Eq(deliveryCellIndex).Text())
		items = append(items, LineItem{
			Sequence:     len(items) + 1,
			ItemName:     name,
			Reason:       squashSpace(cells.Eq(reasonCellIndex).Text()),
			DateCreated:  squashSpace(cells.Eq(createdCellIndex).Text()),
			DeliveryInfo: deliveryInfo,
			DeliveryDate: NormalizeDate(deliveryInfo),
			Delivered:    RowDelivered(cells),
		})
	})
	return items
}

// RowDelivered derives completion from the absence of an action control in
// the trailing action cell. The portal removes the control once an item has
// been despatched, so "nothing left to click" is the completion signal; there
// is no declared done flag anywhere on the page. A row with no action column
// at all counts as delivered.
func RowDelivered(cells *goquery.Selection) bool {
	if cells.Length() <= actionCellIndex {
		return true
	}
	return cells.Eq(actionCellIndex).Find("a, input, button").Length() == 0
}

func findItemsTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		text := t.Text()
		if strings.Contains(text, "Maintenance Items") || containsAll(text, itemHeaderTokens) {
			found = t
			return false
		}
		return true
	})
	return found
}

func containsAll(text string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	return true
}

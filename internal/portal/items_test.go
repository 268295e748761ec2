package portal_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpbkitchens/maintsync/internal/portal"
)

const itemsTable = `
<html><body>
<table>
<tr><td>Unrelated layout table</td></tr>
</table>
<table>
<tr><th>#</th><th>Item</th><th>Reason</th><th>Date Created</th><th>Delivery</th><th>Action</th></tr>
<tr><td>1</td><td>Pantry door</td><td>Chipped edge</td><td>12/08/2025</td><td>Despatched On: 23/10/2025</td><td></td></tr>
<tr><td>2</td><td>Drawer runner</td><td>Seized</td><td>13/08/2025</td><td>On order</td><td><a href="#">Mark Complete</a></td></tr>
<tr><td>3</td><td>Select an item...</td><td></td><td></td><td></td><td></td></tr>
<tr><td colspan="6">Totals</td></tr>
</table>
</body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseItems(t *testing.T) {
	items := portal.ParseItems(mustDoc(t, itemsTable))
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, 1, first.Sequence)
	assert.Equal(t, "Pantry door", first.ItemName)
	assert.Equal(t, "Chipped edge", first.Reason)
	assert.Equal(t, "12/08/2025", first.DateCreated)
	assert.Equal(t, "Despatched On: 23/10/2025", first.DeliveryInfo)
	require.NotNil(t, first.DeliveryDate)
	assert.Equal(t, "2025-10-23", *first.DeliveryDate)
	// No action control left on the row means the item went out.
	assert.True(t, first.Delivered)

	second := items[1]
	assert.Equal(t, 2, second.Sequence)
	assert.False(t, second.Delivered)
	assert.Nil(t, second.DeliveryDate)
}

func TestParseItemsNoMatchingTable(t *testing.T) {
	doc := mustDoc(t, `<html><body><table><tr><td>just a layout grid</td></tr></table></body></html>`)
	assert.Empty(t, portal.ParseItems(doc))
}

func TestParseItemsFiveCellRowCountsAsDelivered(t *testing.T) {
	doc := mustDoc(t, `
<table>
<tr><th>#</th><th>Item</th><th>Reason</th><th>Date Created</th><th>Delivery</th></tr>
<tr><td>1</td><td>Kick board</td><td>Water damage</td><td>01/09/2025</td><td></td></tr>
</table>`)
	items := portal.ParseItems(doc)
	require.Len(t, items, 1)
	assert.True(t, items[0].Delivered)
}

func TestParseItemsActionControlVariants(t *testing.T) {
	doc := mustDoc(t, `
<table>
<tr><th>#</th><th>Item</th><th>Reason</th><th>Date Created</th><th>Delivery</th><th>Action</th></tr>
<tr><td>1</td><td>Hinge set</td><td>Loose</td><td>02/09/2025</td><td></td><td><input type="button" value="Complete"/></td></tr>
<tr><td>2</td><td>Bench top</td><td>Scratched</td><td>02/09/2025</td><td></td><td>done</td></tr>
</table>`)
	items := portal.ParseItems(doc)
	require.Len(t, items, 2)
	assert.False(t, items[0].Delivered, "input control pending")
	assert.True(t, items[1].Delivered, "plain text is not a control")
}

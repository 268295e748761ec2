package portal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpbkitchens/maintsync/internal/portal"
)

const detailPage = `
<html><body>
<div>
Name: Sarah Mitchell
Job Number: KM4521
Mobile: 0412 345 678
Email: sarah.mitchell@example.com
Site Address: 14 Banksia Court
GLEN WAVERLEY, VIC, 3150
</div>
<table>
<tr><th>#</th><th>Item</th><th>Reason</th><th>Date Created</th><th>Delivery</th><th>Action</th></tr>
<tr><td>1</td><td>Pantry door</td><td>Chipped edge</td><td>12/08/2025</td><td>Despatched On: 23/10/2025</td><td></td></tr>
<tr><td>2</td><td>Drawer runner</td><td>Seized</td><td>13/08/2025</td><td>On order</td><td><a href="#">Mark Complete</a></td></tr>
</table>
</body></html>`

func TestParseRecord(t *testing.T) {
	at := time.Date(2025, 10, 24, 9, 0, 0, 0, time.UTC)
	rec, err := portal.ParseRecord([]byte(detailPage), at)
	require.NoError(t, err)

	assert.Equal(t, "KM4521", rec.JobNumber)
	assert.Equal(t, "Sarah Mitchell", rec.ClientName)
	assert.Equal(t, "GLEN WAVERLEY", rec.Suburb)
	assert.Equal(t, at, rec.ExtractedAt)
	require.Len(t, rec.Items, 2)
	assert.Equal(t, 1, rec.DeliveredCount())
}

func TestParseRecordDeterministic(t *testing.T) {
	at := time.Date(2025, 10, 24, 9, 0, 0, 0, time.UTC)
	first, err := portal.ParseRecord([]byte(detailPage), at)
	require.NoError(t, err)
	second, err := portal.ParseRecord([]byte(detailPage), at)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseRecordPartialPage(t *testing.T) {
	// Nothing extractable still assembles a record; absences are empty values.
	rec, err := portal.ParseRecord([]byte("<html><body><p>maintenance schedule unavailable</p></body></html>"), time.Now())
	require.NoError(t, err)
	assert.Empty(t, rec.JobNumber)
	assert.Empty(t, rec.Items, "a job with no items is a valid record")
}

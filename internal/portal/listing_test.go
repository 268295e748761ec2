package portal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpbkitchens/maintsync/internal/portal"
)

const listingPage = `
<html><body>
<table>
<tr><th>Job</th><th>Client</th><th>Suburb</th><th>Status</th><th>Booked</th><th>Notes</th></tr>
<tr>
  <td><a href="MyJobs.aspx?JobNumber=KM4521">KM4521</a></td>
  <td>Sarah Mitchell</td><td>Glen Waverley</td><td>Open</td><td>Yes</td><td></td>
</tr>
<tr>
  <td><a href="MyJobs.aspx?JobNumber=KM4522">KM4522</a></td>
  <td>Tom Becker</td><td>Ringwood</td><td>Open</td><td>No</td><td></td>
</tr>
<tr><td colspan="6">2 jobs listed</td></tr>
<tr>
  <td>KM4523</td><td>No link row</td><td>Box Hill</td><td>Open</td><td>No</td><td></td>
</tr>
</table>
</body></html>`

func TestParseListing(t *testing.T) {
	refs, err := portal.ParseListing([]byte(listingPage), "https://trades.example.com/Trades/MyJobs_Maintenance.aspx")
	require.NoError(t, err)
	require.Len(t, refs, 2)

	assert.Equal(t, "KM4521", refs[0].JobNumber)
	assert.Equal(t, "https://trades.example.com/Trades/MyJobs.aspx?JobNumber=KM4521", refs[0].URL)
	assert.Equal(t, "KM4522", refs[1].JobNumber)
}

func TestParseListingNeverIncludesHeader(t *testing.T) {
	// Header rendered with td cells still occupies row zero and is skipped.
	page := `
<table>
<tr><td>Job</td><td>Client</td><td>Suburb</td><td>Status</td><td>Booked</td><td>Notes</td></tr>
<tr><td><a href="/j?JobNumber=A1">A1</a></td><td>a</td><td>b</td><td>c</td><td>d</td><td>e</td></tr>
</table>`
	refs, err := portal.ParseListing([]byte(page), "")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "A1", refs[0].JobNumber)
}

func TestParseListingKeepsDuplicates(t *testing.T) {
	page := `
<table>
<tr><th>h</th></tr>
<tr><td><a href="/j?JobNumber=A1">A1</a></td><td>a</td><td>b</td><td>c</td><td>d</td><td>e</td></tr>
<tr><td><a href="/j?JobNumber=A1">A1</a></td><td>a</td><td>b</td><td>c</td><td>d</td><td>e</td></tr>
</table>`
	refs, err := portal.ParseListing([]byte(page), "")
	require.NoError(t, err)
	assert.Len(t, refs, 2, "duplicate rows stay queued; upsert makes re-processing safe")
}

func TestParseListingEmpty(t *testing.T) {
	refs, err := portal.ParseListing([]byte("<html><body><p>no table</p></body></html>"), "")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

package publisher_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpbkitchens/maintsync/internal/portal"
	"github.com/tpbkitchens/maintsync/internal/publisher"
)

func TestMemoryPublisherRecordsInOrder(t *testing.T) {
	pub := publisher.NewMemory()

	recA := portal.JobRecord{JobNumber: "KM4521", ExtractedAt: time.Now().UTC()}
	recB := portal.JobRecord{JobNumber: "KM4522", ExtractedAt: time.Now().UTC()}

	idA, err := pub.PublishRecord(context.Background(), recA)
	require.NoError(t, err)
	assert.Equal(t, "KM4521", idA)

	_, err = pub.PublishRecord(context.Background(), recB)
	require.NoError(t, err)

	records := pub.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "KM4521", records[0].JobNumber)
	assert.Equal(t, "KM4522", records[1].JobNumber)
}

func TestNoOpPublisherDiscards(t *testing.T) {
	var pub publisher.NoOpPublisher
	id, err := pub.PublishRecord(context.Background(), portal.JobRecord{JobNumber: "KM4521"})
	require.NoError(t, err)
	assert.Empty(t, id)
	require.NoError(t, pub.Close())
}

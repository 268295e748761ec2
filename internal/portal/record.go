package portal

import (
	"bytes"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// WorkRef is one queued unit of traversal: a job number plus the absolute
// URL of its detail page. The builder does not deduplicate job numbers; a
// listing that repeats a row produces a queue that repeats it too.
type WorkRef struct {
	JobNumber string `json:"job_number"`
	URL       string `json:"url"`
}

// LineItem is one maintenance sub-task row within a job.
type LineItem struct {
	// Sequence is the 1-based position within the parent's item list. It is
	// assigned at parse time and is not stable across re-extraction.
	Sequence     int     `json:"sequence"`
	ItemName     string  `json:"item_name"`
	Reason       string  `json:"reason"`
	DateCreated  string  `json:"date_created"`
	DeliveryInfo string  `json:"delivery_info"`
	DeliveryDate *string `json:"delivery_date"`
	// Delivered is derived, not asserted: true iff the row's action cell has
	// no control left in it. See RowDelivered.
	Delivered bool `json:"is_delivered"`
}

// JobRecord is the fully extracted, normalized representation of one detail
// page. JobNumber is the natural key used for synchronization. A record with
// zero items is valid; jobs often have no maintenance items yet.
type JobRecord struct {
	JobNumber   string     `json:"job_number"`
	ClientName  string     `json:"client_name"`
	Mobile      string     `json:"mobile"`
	Email       string     `json:"email"`
	SiteAddress string     `json:"site_address"`
	Suburb      string     `json:"suburb"`
	Items       []LineItem `json:"items"`
	ExtractedAt time.Time  `json:"extracted_at"`
}

// DeliveredCount reports how many of the record's items are delivered.
func (r JobRecord) DeliveredCount() int {
	n := 0
	for _, it := range r.Items {
		if it.Delivered {
			n++
		}
	}
	return n
}

// ParseRecord parses one detail page body and assembles a JobRecord stamped
// with the given extraction time.
func ParseRecord(body []byte, at time.Time) (JobRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return JobRecord{}, fmt.Errorf("parse detail page: %w", err)
	}
	return AssembleRecord(doc, at), nil
}

// AssembleRecord composes the field extractor, item-table parser, and date
// normalizer over one page snapshot. No failing extraction blocks assembly;
// absences land in the record as empty or nil values. Re-running on an
// unchanged page yields an identical record apart from ExtractedAt.
func AssembleRecord(doc *goquery.Document, at time.Time) JobRecord {
	f := ExtractFields(doc.Text())
	return JobRecord{
		JobNumber:   f.JobNumber,
		ClientName:  f.Name,
		Mobile:      f.Mobile,
		Email:       f.Email,
		SiteAddress: f.SiteAddress,
		Suburb:      f.Suburb,
		Items:       ParseItems(doc),
		ExtractedAt: at,
	}
}

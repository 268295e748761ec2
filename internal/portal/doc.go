// Package portal parses the trade portal's listing and job detail pages into
// structured records. Every extractor treats a missing field or table as a
// normal outcome: the portal renders partially-filled jobs all the time, so
// absence propagates as an empty value instead of an error.
package portal

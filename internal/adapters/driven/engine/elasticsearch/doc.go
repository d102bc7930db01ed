// Package elasticsearch implements driven.SearchEngine on top of the
// official Elasticsearch Go client.
//
// Collections map to indices. Record-kind labels are only sent on the wire
// when LegacyTypes is enabled, for clusters that still accept mapping types.
package elasticsearch

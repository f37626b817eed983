// Package storecheck is the data model of storecheck.
//
// It defines the endpoint definition, probe outcomes, check records of the history,
// and the snapshot entries that the presentation layer reads.
// All of JSON representations in this package are compatible with the files that storecheck writes.
package storecheck

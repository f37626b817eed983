// internal is internal packages for storecheck.
//
// Leaf packages (probe, health, stats, store, publish, logconv) depend only on lib-storecheck.
// The runner package puts them together, and its dependencies are interfaces like runner.HistoryStore.
//
// The checkerr package, the meta package and the testutil package are exception cases for this rule.
// These packages are used by other packages.
package internal

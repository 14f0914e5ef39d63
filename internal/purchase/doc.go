// Package purchase holds the pure business rules of a subsidized-fuel sale:
// the operator keypad, the nominal to liters conversion, quota deduction,
// sale identifiers and license-plate normalisation.  Nothing here touches
// storage or the network.
package purchase

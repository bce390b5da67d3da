// Package wealth holds the domain of the wealth manager platform: the exact
// value types used for amounts and units, mutual funds, the investments users
// hold in them, users and their roles, and the portfolio aggregation that turns
// a list of investments into returns and an asset allocation.
//
// The package is storage and transport agnostic. The store package persists
// these types, and the users and investments packages expose them over HTTP.
//
// Amounts are kept exact with decimal arithmetic and only converted to floats
// when a percentage is produced.
package wealth

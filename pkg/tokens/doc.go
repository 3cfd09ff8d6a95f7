// Package tokens builds the replacement map that resolves placeholder tokens
// to user-supplied values, and validates those values.
//
// A Map applies every binding in a single left-to-right pass. At a given
// position the longest matching token wins, and text produced by a
// replacement is never scanned again. Applying the same map twice is
// therefore stable: once the tokens are gone, a second pass changes nothing.
package tokens

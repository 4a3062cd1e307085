// Package checkout holds the booking flow for a single plan: the selection
// configurator with its per-unit bounds, the price calculation, the payment
// method state machine and confirmation references.
//
// Nothing here performs I/O. Time is injected through Clock so that the
// "no past dates" rule and reference generation are deterministic in tests.
package checkout

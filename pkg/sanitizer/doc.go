// Package sanitizer normalizes user supplied listing and profile data before
// it is validated and stored.
//
// All functions are idempotent and never fail: input that cannot be
// normalized comes back empty and is rejected later by validation.
//
//   - Strings: collapse whitespace, trim
//   - Emails: trim, lowercase
//   - Amenities: lowercase keys with known aliases folded ("Wi-Fi" becomes "wifi")
//   - Phones: E.164, parsed against a default region
//   - URLs: enforce https, lowercase host
//   - Slices: drop empty values and duplicates after normalization
package sanitizer

// Package sanitizer normalizes free-form input before validation and storage.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions handle invalid input gracefully, typically by returning
// empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Free text (names, reasons, notes): collapse whitespace, trim
//   - Segments: lowercase, non letters/digits collapsed to single underscores
//   - Promo codes: uppercase, letters and digits only
//   - Ids: trimmed and lowercased, duplicates and empties removed
package sanitizer

// Package sanitizer provides input normalization functions for marketplace data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings or empty slices rather than errors.
//
// The package is used across the trips, shipments and transactions services
// for consistent normalization before validation and storage.
//
// Normalization includes:
//   - Phone numbers: Convert to E.164 format (+[country][number])
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Cities: Lowercase, remove all special characters - "Tel Aviv" becomes "tel_aviv"
//     so route lookups match regardless of input spelling
//   - Slices: Remove duplicates and empty values after normalization
//   - Weights: Clamp to configured ranges
package sanitizer

// Package smsparser turns Persian bank notifications and SMS alerts into
// entity.Transaction records.
//
// The pipeline is normalize, classify, extract. Every exported entry point is
// total: malformed or unrecognized input degrades to missing fields or to the
// FALLBACK template, never to a panic or an error returned to the caller.
// All functions are safe for concurrent use.
package smsparser

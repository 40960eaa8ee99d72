// Package extract pulls candidate field values out of voice input.
//
// Free text is scanned by an ordered list of independent rules. Each rule
// that fires yields one Candidate; several candidates can come out of a
// single utterance. A rule may name other rules in Excludes: it is skipped
// when any of them already fired on the same utterance. The default list
// makes SSN exclude phone, so a ten digit span is always read as a phone
// number.
//
// Structured tool-call payloads are handled by Payload, which looks up the
// field reference and the value under fixed, ordered key aliases.
package extract

// Package vocab defines the vocabulary record produced for every input
// word, the parsers that turn raw model output into such a record, and the
// retry controller that keeps asking the model until the record is complete.
package vocab

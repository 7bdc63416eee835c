// Package batch reads the inputs of a run: the word list and the prompt
// template.
package batch

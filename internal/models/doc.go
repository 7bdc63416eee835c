// Package models lists the models served by the generation endpoint,
// grouped by what they are useful for.
package models

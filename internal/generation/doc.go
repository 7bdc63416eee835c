// Package generation talks to the language model that writes the
// vocabulary entries. The default backend is any OpenAI-compatible server
// such as LM Studio; Google Gemini is available as an alternative.
package generation

// Package provider implements the LLM backend adapters. Four backends are
// supported behind one Adapter interface: Google Gemini plus the
// OpenAI-compatible Mistral, Groq, and Cerebras APIs. Adapters are stateless,
// normalize HTTP and transport failures onto the shared error taxonomy, and
// leave retry policy to the caller.
package provider

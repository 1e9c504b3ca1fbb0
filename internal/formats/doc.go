// Package formats implements the compress.Format strategies nub ships with:
// text, Python, Markdown, CSV, JSON, conversation logs, mind maps, and
// directory trees. Each strategy's Parse builds a *tree.Node graph with
// Name/Signature/Preview/BodyLines populated so the shared compress.Render
// ladder can do the actual budget-fitting; a strategy only overrides Render
// when its degradation path is genuinely format-specific.
package formats

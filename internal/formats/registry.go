package formats

import (
	"strings"

	"github.com/nub-run/nub/internal/compress"
	"github.com/nub-run/nub/internal/config"
)

// Match is the result of format detection: the strategy selected and a
// confidence in [0,1].
type Match struct {
	Format     compress.Format
	Confidence float64
}

// Registry holds the known Format strategies and resolves one for a given
// filename/content pair: extension match first, then magic detection,
// then the caller's own fallback.
type Registry struct {
	strategies  []compress.Format
	byExtension map[string]compress.Format
	byName      map[string]compress.Format
	detectors   []detectable
}

type detectable interface {
	compress.Format
	Detect(content []byte) bool
}

// NewRegistry builds a registry with nub's default strategy set already
// registered, first-registered-wins on extension conflicts.
func NewRegistry() *Registry {
	return NewRegistryWithConfig(config.Defaults())
}

// NewRegistryWithConfig is NewRegistry but threads cfg.Text's topology
// scores into the Text and MindMap strategies, so a loaded config.Config
// actually reaches per-node scoring rather than only the engine's
// format-independent defaults.
func NewRegistryWithConfig(cfg config.Config) *Registry {
	r := &Registry{
		byExtension: make(map[string]compress.Format),
		byName:      make(map[string]compress.Format),
	}
	r.Register(NewTextWithScores(cfg.Text.SectionScore, cfg.Text.LineScore))
	r.Register(NewMindMapWithScore(cfg.Text.SectionScore))
	r.Register(NewMarkdown())
	r.Register(NewPython())
	r.Register(NewCSV())
	r.Register(NewJSON())
	r.Register(NewConversation())
	r.Register(NewFolder())
	return r
}

// Register adds a strategy, indexing it by name and by every extension it
// claims (extensions() returning nil means content-only detection, e.g.
// MindMap).
func (r *Registry) Register(f compress.Format) {
	r.strategies = append(r.strategies, f)
	r.byName[f.Name()] = f
	if e, ok := f.(interface{ Extensions() []string }); ok {
		for _, ext := range e.Extensions() {
			ext = normalizeExt(ext)
			if _, exists := r.byExtension[ext]; !exists {
				r.byExtension[ext] = f
			}
		}
	}
	if d, ok := f.(detectable); ok {
		r.detectors = append(r.detectors, d)
	}
}

// ByName looks up a strategy for the CLI's --type override.
func (r *Registry) ByName(name string) (compress.Format, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// ByExtension looks up a strategy by extension, tried as a second guess
// when --type doesn't match a format name directly.
func (r *Registry) ByExtension(ext string) (compress.Format, bool) {
	f, ok := r.byExtension[normalizeExt(ext)]
	return f, ok
}

// Detect resolves the best format for a (filename, content) pair: extension
// match (confidence 1.0), then magic detection (confidence 0.8). Returns
// ok=false to let the caller apply its own text fallback.
func (r *Registry) Detect(filename string, content []byte) (Match, bool) {
	if filename != "" {
		if ext := extensionOf(filename); ext != "" {
			if f, ok := r.byExtension[ext]; ok {
				return Match{Format: f, Confidence: 1.0}, true
			}
		}
	}
	for _, d := range r.detectors {
		if d.Detect(content) {
			return Match{Format: d, Confidence: 0.8}, true
		}
	}
	return Match{}, false
}

func extensionOf(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i:])
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

package formats

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/nub-run/nub/internal/compress"
	"github.com/nub-run/nub/internal/gitinfo"
	"github.com/nub-run/nub/internal/secrets"
	"github.com/nub-run/nub/internal/tree"
)

// defaultSkipNames and binaryExtensions are directory entries and file
// extensions skipped or previewed differently by default.
var (
	defaultSkipNames = map[string]bool{
		"__pycache__": true, ".git": true, ".svn": true, ".hg": true,
		"node_modules": true, ".venv": true, "venv": true, ".tox": true,
		".mypy_cache": true, ".pytest_cache": true, ".ruff_cache": true,
		"__pypackages__": true, ".eggs": true, ".DS_Store": true,
	}
	defaultSkipSuffixes = []string{".egg-info"}

	binaryExtensions = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true, ".webp": true, ".bmp": true,
		".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true,
		".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".7z": true, ".rar": true,
		".exe": true, ".dll": true, ".so": true, ".dylib": true,
		".pyc": true, ".pyo": true, ".class": true,
		".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
		".mp3": true, ".mp4": true, ".wav": true, ".ogg": true, ".webm": true, ".avi": true, ".mov": true,
		".sqlite": true, ".db": true,
	}
)

// Folder walks a directory into a tree of directory/file Section and
// Definition nodes. Unlike the other strategies it doesn't implement
// compress.Format.Parse (there's no []byte source for a directory). The
// CLI calls ParsePath directly when the input argument is a directory.
//
// File previews are scanned for leaked credentials and redacted before
// they're kept (internal/secrets), and the root is annotated with its git
// branch when the directory is a repository (internal/gitinfo).
type Folder struct {
	MaxDepth       int
	FollowSymlinks bool
	SkipNames      map[string]bool
	PreviewChars   int
	MaxReadBytes   int64
	Indent         string
	RedactSecrets  bool
}

func NewFolder() *Folder {
	return &Folder{
		MaxDepth:      10,
		SkipNames:     defaultSkipNames,
		PreviewChars:  200,
		MaxReadBytes:  10240,
		Indent:        "  ",
		RedactSecrets: true,
	}
}

func (Folder) Name() string         { return "folder" }
func (Folder) Extensions() []string { return nil }

// Parse always fails for Folder: directories have no byte source. Use
// ParsePath.
func (Folder) Parse(source []byte) (*tree.Node, error) {
	return nil, fmt.Errorf("%w: folder format requires ParsePath, not Parse", compress.ErrParseFailed)
}

// ParsePath walks path into a directory tree, annotating the root with its
// git branch (if any) the way a Folder-format overview line would.
func (f *Folder) ParsePath(path string) (*tree.Node, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", compress.ErrParseFailed, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", compress.ErrParseFailed, path)
	}

	root := f.parseDirectory(path, 0)
	if branch, err := gitinfo.DetectBranch(path); err == nil {
		root.Signature = fmt.Sprintf("%s [%s]", root.Signature, branch)
	}
	return root, nil
}

func (f *Folder) parseDirectory(path string, depth int) *tree.Node {
	name := filepath.Base(path)
	if name == "." || name == "/" {
		name = path
	}
	dir := &tree.Node{
		Kind:      tree.Section,
		Name:      name,
		Signature: strings.Repeat(f.Indent, depth) + name + "/",
	}

	if depth >= f.MaxDepth {
		return dir
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return dir
	}
	sort.Slice(entries, func(i, j int) bool {
		iDir, jDir := entries[i].IsDir(), entries[j].IsDir()
		if iDir != jDir {
			return iDir
		}
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink != 0 && !f.FollowSymlinks {
			continue
		}
		if f.shouldSkip(entry.Name()) {
			continue
		}
		full := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			dir.AddChild(f.parseDirectory(full, depth+1))
			continue
		}
		if fileNode := f.parseFile(full, entry.Name(), depth+1); fileNode != nil {
			dir.AddChild(fileNode)
		}
	}
	dir.RecalculateSpan()
	return dir
}

func (f *Folder) parseFile(fullPath, name string, depth int) *tree.Node {
	info, err := os.Stat(fullPath)
	if err != nil {
		return nil
	}
	indent := strings.Repeat(f.Indent, depth)
	size := formatSize(info.Size())

	if binaryExtensions[strings.ToLower(filepath.Ext(name))] {
		return &tree.Node{
			Kind:      tree.Definition,
			Name:      name,
			Signature: fmt.Sprintf("%s%s [binary] [%s]", indent, name, size),
			Atomic:    true,
		}
	}

	preview := f.readPreview(fullPath)
	var signature string
	if preview != "" {
		signature = fmt.Sprintf("%s%s - %s [%s]", indent, name, preview, size)
	} else {
		signature = fmt.Sprintf("%s%s [%s]", indent, name, size)
	}

	return &tree.Node{
		Kind:      tree.Definition,
		Name:      name,
		Signature: signature,
		Atomic:    true,
	}
}

func (f *Folder) readPreview(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	buf := make([]byte, f.MaxReadBytes)
	n, err := file.Read(buf)
	if err != nil && n == 0 {
		return ""
	}
	raw := buf[:n]

	var text string
	if utf8.Valid(raw) {
		text = string(raw)
	} else {
		// Best-effort latin-1 fallback: every byte maps to a rune 1:1.
		runes := make([]rune, len(raw))
		for i, b := range raw {
			runes[i] = rune(b)
		}
		text = string(runes)
	}

	if f.RedactSecrets {
		if redacted, _, err := secrets.Redact(text); err == nil {
			text = redacted
		}
	}

	collapsed := collapseWhitespace(text)
	if len(collapsed) > f.PreviewChars {
		collapsed = collapsed[:f.PreviewChars]
	}
	return collapsed
}

func (f *Folder) shouldSkip(name string) bool {
	if f.SkipNames[name] {
		return true
	}
	for _, suffix := range defaultSkipSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !prevSpace {
				b.WriteByte(' ')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d bytes", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func (Folder) Render(node *tree.Node, budget int, opts compress.Options) ([]compress.OutputLine, bool) {
	return compress.Render(node, budget, opts)
}

package venv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Requirement is a single package line from a requirements manifest.
type Requirement struct {
	// Name is the distribution name, including extras if present
	// (e.g. "requests[socks]").
	Name string `json:"name"`

	// Specifier is the remainder of the line: version constraints,
	// environment markers or a URL. Empty for unpinned requirements.
	Specifier string `json:"specifier,omitempty"`

	// Line is the 1-based line number where the requirement starts.
	Line int `json:"line"`

	// Direct marks a local path or URL requirement such as ./vendor/pkg
	// or https://host/pkg.zip. Name then holds the path or URL.
	Direct bool `json:"direct,omitempty"`
}

// Manifest is the parsed content of a requirements file.
type Manifest struct {
	// Requirements lists package requirements in file order.
	Requirements []Requirement `json:"requirements"`

	// Options lists pip option lines (-r, -c, -e, --index-url, ...)
	// verbatim. They are passed through to pip, not interpreted.
	Options []string `json:"options,omitempty"`
}

// requirementName matches a PEP 508 name with optional extras.
var requirementName = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*(\[[^\]]*\])?)\s*(.*)$`)

// urlScheme matches a leading "https://", "git+ssh://", "file://" and so on.
var urlScheme = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// drivePath matches a Windows absolute path such as C:\wheels or C:/wheels.
var drivePath = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

// ParseManifestFile reads and parses the manifest at path.
func ParseManifestFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	m, err := ParseManifest(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return m, nil
}

// ParseManifest parses requirements-file syntax from r.
//
// Blank lines and comments are ignored. A comment starts with '#' at the
// beginning of a line or after whitespace. Lines ending in a backslash
// continue on the next line.
func ParseManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{Requirements: []Requirement{}}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	var pending strings.Builder
	startLine := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if pending.Len() == 0 {
			startLine = lineNo
		}

		if strings.HasSuffix(line, `\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			continue
		}
		pending.WriteString(line)
		logical := pending.String()
		pending.Reset()

		if err := m.addLine(logical, startLine); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if pending.Len() > 0 {
		if err := m.addLine(pending.String(), startLine); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Manifest) addLine(line string, lineNo int) error {
	line = strings.TrimSpace(stripComment(line))
	if line == "" {
		return nil
	}

	if strings.HasPrefix(line, "-") {
		m.Options = append(m.Options, line)
		return nil
	}

	if ref, rest, ok := directReference(line); ok {
		m.Requirements = append(m.Requirements, Requirement{
			Name:      ref,
			Specifier: rest,
			Line:      lineNo,
			Direct:    true,
		})
		return nil
	}

	match := requirementName.FindStringSubmatch(line)
	if match == nil {
		return fmt.Errorf("line %d: invalid requirement %q", lineNo, line)
	}
	m.Requirements = append(m.Requirements, Requirement{
		Name:      match[1],
		Specifier: strings.TrimSpace(match[3]),
		Line:      lineNo,
	})
	return nil
}

// directReference reports whether line names a local path or URL instead
// of a distribution. It returns the reference and the remainder (usually
// an environment marker). "name @ url" lines are named requirements and
// are not matched here.
func directReference(line string) (ref, rest string, ok bool) {
	ref = line
	if i := strings.IndexAny(line, " \t;"); i >= 0 {
		ref, rest = line[:i], strings.TrimSpace(line[i:])
	}

	switch {
	case strings.HasPrefix(ref, "."), strings.HasPrefix(ref, "/"), strings.HasPrefix(ref, "~"),
		strings.HasPrefix(ref, `\`), drivePath.MatchString(ref), urlScheme.MatchString(ref):
		return ref, rest, true
	case strings.ContainsAny(ref, `/\`) && !strings.Contains(ref, "@"):
		// A relative path without a leading "./", such as vendor/pkg.
		// "pkg@https://..." is a named URL requirement.
		return ref, rest, true
	}
	return "", "", false
}

// stripComment removes a trailing " # ..." comment. A '#' glued to other
// text (as in a URL fragment "pkg.whl#sha256=...") is kept.
func stripComment(line string) string {
	for i, r := range line {
		if r != '#' {
			continue
		}
		if i == 0 || line[i-1] == ' ' || line[i-1] == '\t' {
			return line[:i]
		}
	}
	return line
}

// Names returns the requirement names in file order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Requirements))
	for i, r := range m.Requirements {
		names[i] = r.Name
	}
	return names
}

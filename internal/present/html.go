package present

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ShayCichocki/learnlab/internal/exec"
	"github.com/ShayCichocki/learnlab/internal/logging"
)

// HTMLSink writes every Show call as one HTML page with the artifacts side
// by side. Graphs are converted to PNG with graphviz; when that fails the
// DOT source is embedded instead.
type HTMLSink struct {
	dir     string
	runner  exec.CommandRunner
	dotPath string
	open    bool
	logger  *logging.DebugLogger
	last    string
}

// HTMLOption configures an HTMLSink.
type HTMLOption func(*HTMLSink)

// WithDot sets the graphviz executable.
func WithDot(path string) HTMLOption {
	return func(s *HTMLSink) {
		if path != "" {
			s.dotPath = path
		}
	}
}

// WithOpen opens each page with the platform opener.
func WithOpen(open bool) HTMLOption {
	return func(s *HTMLSink) { s.open = open }
}

// WithLogger sets the debug logger.
func WithLogger(l *logging.DebugLogger) HTMLOption {
	return func(s *HTMLSink) { s.logger = l }
}

// NewHTMLSink creates a sink writing pages into dir.
func NewHTMLSink(dir string, runner exec.CommandRunner, opts ...HTMLOption) *HTMLSink {
	s := &HTMLSink{
		dir:     dir,
		runner:  runner,
		dotPath: "dot",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LastDocument returns the path of the most recently written page.
func (s *HTMLSink) LastDocument() string {
	return s.last
}

type htmlCell struct {
	Title string
	Image string
	Pre   string
	Table *Table
	Words []string
}

// Show implements Sink.
func (s *HTMLSink) Show(ctx context.Context, artifacts ...Artifact) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: create output directory: %w", ErrRenderFailure, err)
	}

	id := uuid.NewString()
	cells := make([]htmlCell, 0, len(artifacts))
	for i, a := range artifacts {
		cell := htmlCell{Title: a.Title}
		switch c := a.Content.(type) {
		case *Graph:
			img, err := s.renderGraph(ctx, c, fmt.Sprintf("%s-%d", id, i))
			if err != nil {
				s.logger.Log("[present] graphviz failed for %q: %v", a.Title, err)
				cell.Pre = c.DOT()
			} else {
				cell.Image = img
			}
		case *Table:
			cell.Table = c
		case *Words:
			cell.Words = make([]string, len(c.Words))
			for j, w := range c.Words {
				cell.Words[j] = w.String()
			}
		}
		cells = append(cells, cell)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, cells); err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}
	path := filepath.Join(s.dir, "learnlab-"+id+".html")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("%w: write page: %w", ErrRenderFailure, err)
	}
	s.last = path
	s.logger.Log("[present] wrote %s (%d artifacts)", path, len(artifacts))

	if s.open {
		name, args := exec.OpenCommand()
		if err := s.runner.Start(ctx, name, append(args, path)...); err != nil {
			return fmt.Errorf("%w: open page: %w", ErrRenderFailure, err)
		}
	}
	return nil
}

// renderGraph writes the DOT file and converts it to PNG, returning the
// PNG file name relative to the page.
func (s *HTMLSink) renderGraph(ctx context.Context, g *Graph, base string) (string, error) {
	dotFile := filepath.Join(s.dir, base+".dot")
	pngName := base + ".png"
	if err := os.WriteFile(dotFile, []byte(g.DOT()), 0644); err != nil {
		return "", err
	}
	out, err := s.runner.Run(ctx, s.dir, s.dotPath, "-Tpng", "-o", pngName, dotFile)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, bytes.TrimSpace(out))
	}
	return pngName, nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>learnlab</title>
<style>
body { font-family: sans-serif; }
td { vertical-align: top; padding: 0 1em; }
th.title { text-align: left; font-size: 1.1em; }
table.obs td, table.obs th { border: 1px solid #aaa; padding: 2px 6px; }
tr.group-start td, tr.group-start th { border-top: 3px solid #444; }
</style>
</head>
<body>
<table>
<tr>{{range .}}<th class="title">{{.Title}}</th>{{end}}</tr>
<tr>{{range .}}<td>
{{- if .Image}}<img src="{{.Image}}">
{{- else if .Pre}}<pre>{{.Pre}}</pre>
{{- else if .Table}}<table class="obs"><tr><th></th>{{range .Table.Columns}}<th>{{.}}</th>{{end}}</tr>
{{- $prev := ""}}{{range $i, $r := .Table.Rows}}<tr{{if and (ne $i 0) (ne $r.Group $prev)}} class="group-start"{{end}}><th>{{$r.Header}}</th>{{range $r.Cells}}<td>{{.}}</td>{{end}}</tr>{{$prev = $r.Group}}{{end}}</table>
{{- else}}<ul>{{range .Words}}<li><code>{{.}}</code></li>{{end}}</ul>
{{- end}}</td>{{end}}</tr>
</table>
</body>
</html>
`))

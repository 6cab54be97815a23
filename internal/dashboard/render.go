package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"path/filepath"

	"retention/internal/chart"
	"retention/internal/fsutil"
	"retention/web"
)

var tmpl = template.Must(template.New("").Funcs(template.FuncMap{
	"num": chart.Num,
}).ParseFS(web.TemplatesFS, "templates/dashboard.html"))

// Render writes fig as a self-contained HTML document.
func Render(w io.Writer, fig *chart.Figure) error {
	if fig == nil {
		return fmt.Errorf("render dashboard: nil figure")
	}
	if err := tmpl.ExecuteTemplate(w, "dashboard", fig); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}

// WriteFile renders fig and atomically replaces path with the result,
// creating the parent directory when missing.
func WriteFile(path string, fig *chart.Figure) error {
	var buf bytes.Buffer
	if err := Render(&buf, fig); err != nil {
		return err
	}
	if err := fsutil.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write dashboard %s: %w", path, err)
	}
	return nil
}

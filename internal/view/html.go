package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

// Template names.
const (
	PageTemplate = "page"
	GameTemplate = "game"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

// Templates returns the parsed template set. It defines "page", "game",
// "board", "moves" and "cell".
func Templates() *template.Template {
	return templates
}

// RenderGame writes the game fragment (board, status and move list).
func RenderGame(w io.Writer, v Game) error {
	if err := templates.ExecuteTemplate(w, GameTemplate, v); err != nil {
		return fmt.Errorf("failed to render game: %w", err)
	}
	return nil
}

// GameHTML renders the game fragment into a string.
func GameHTML(v Game) (string, error) {
	var buf bytes.Buffer
	if err := RenderGame(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

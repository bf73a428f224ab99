// Package integration provides embedded shell integration snippets.
package integration

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// ZshComplete contains the zsh widget that completes paths through filemgr.
//
//go:embed zsh-complete.zsh
var ZshComplete string

// DefaultKey is the key sequence the widget is bound to (Ctrl-T).
const DefaultKey = `^T`

// Render renders the integration script for the running binary.
func Render() (string, error) {
	binary, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}

	return RenderFor(filepath.ToSlash(binary), DefaultKey)
}

// RenderFor renders the integration script calling binary, bound to key.
func RenderFor(binary, key string) (string, error) {
	tmpl, err := template.New("zsh-complete").Parse(ZshComplete)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"Binary": binary,
		"Key":    key,
	}); err != nil {
		return "", err
	}

	return buf.String(), nil
}

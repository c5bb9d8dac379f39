package render

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// WriteDocument writes the final page as UTF-8, replacing any previous file at path.
// Parent directories are created as needed.
func WriteDocument(path, document string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("output path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, []byte(document), 0644); err != nil {
		return "", fmt.Errorf("failed to write page %s: %w", path, err)
	}

	return path, nil
}

// PreviewDataURI embeds the document in a base64 data URI.
func PreviewDataURI(document string) string {
	return "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(document))
}

// IframeSnippet returns an iframe that displays the document inline.
func IframeSnippet(document string) string {
	return fmt.Sprintf(`<iframe src="%s" width="100%%" height="600px" style="border:1px solid #ccc;"></iframe>`, PreviewDataURI(document))
}

// ToMarkdown converts the final page to Markdown for plain-text sharing.
func ToMarkdown(document string) (string, error) {
	converter := md.NewConverter("", true, nil)
	converted, err := converter.ConvertString(document)
	if err != nil {
		return "", fmt.Errorf("failed to convert page to markdown: %w", err)
	}
	return strings.TrimSpace(converted) + "\n", nil
}

// MarkdownPath derives the Markdown sibling of an HTML artifact path.
func MarkdownPath(htmlPath string) string {
	ext := filepath.Ext(htmlPath)
	return strings.TrimSuffix(htmlPath, ext) + ".md"
}

// WriteMarkdown converts the document and writes it next to the HTML artifact.
func WriteMarkdown(htmlPath, document string) (string, error) {
	converted, err := ToMarkdown(document)
	if err != nil {
		return "", err
	}
	return WriteDocument(MarkdownPath(htmlPath), converted)
}

package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

// docxDocumentXMLPath is the path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// wtTag matches <w:t>text</w:t> including attribute variants like
// <w:t xml:space="preserve">.
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// paragraphEnd marks paragraph boundaries in the document XML.
var paragraphEnd = regexp.MustCompile(`</w:p>`)

func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open DOCX: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxDocumentXMLPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", f.Name, err)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", f.Name, err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("DOCX has no %s", docxDocumentXMLPath)
	}

	var sb strings.Builder
	for _, para := range paragraphEnd.Split(string(docXML), -1) {
		matches := wtTag.FindAllStringSubmatch(para, -1)
		if len(matches) == 0 {
			continue
		}
		for _, m := range matches {
			sb.WriteString(html.UnescapeString(m[1]))
		}
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String()), nil
}

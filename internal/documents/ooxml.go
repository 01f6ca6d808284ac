package documents

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// ooxmlPackage assembles the ZIP container shared by DOCX and PPTX output.
type ooxmlPackage struct {
	buf bytes.Buffer
	zw  *zip.Writer
}

func newOOXMLPackage() *ooxmlPackage {
	p := &ooxmlPackage{}
	p.zw = zip.NewWriter(&p.buf)
	return p
}

func (p *ooxmlPackage) addPart(name, content string) error {
	w, err := p.zw.Create(name)
	if err != nil {
		return fmt.Errorf("create part %s: %w", name, err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		return fmt.Errorf("write part %s: %w", name, err)
	}
	return nil
}

func (p *ooxmlPackage) finish() ([]byte, error) {
	if err := p.zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return p.buf.Bytes(), nil
}

// escapeXML escapes the five XML special characters in element text.
var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlReplacer.Replace(s)
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// packageRels is the root relationship part pointing at the main document.
func packageRels(target string) string {
	return xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="` + target + `"/>` +
		`</Relationships>`
}

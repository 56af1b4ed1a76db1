package sniff

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"

	"github.com/fluidos-project/kubectl-fluidos/pkg/kube"
	"github.com/fluidos-project/kubectl-fluidos/pkg/yaml"
)

// Format is the detected kind of an input document.
type Format int

const (
	// Unknown is only returned together with an error.
	Unknown Format = iota
	// K8S is a YAML (Kubernetes) manifest.
	K8S
	// MSPL is an XML policy document.
	MSPL
)

func (f Format) String() string {
	switch f {
	case K8S:
		return "K8S"
	case MSPL:
		return "MSPL"
	}

	return "Unknown"
}

var (
	ErrUnknownFormat     = errors.New("unknown format")
	ErrEmptyDocument     = errors.New("empty document")
	ErrMultipleDocuments = errors.New("multiple documents")
	ErrNoRootElement     = errors.New("no root element")
	ErrTrailingContent   = errors.New("content after root element")
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Result is the outcome of [Classify].
type Result struct {
	// Document is the parsed YAML value when Format is K8S, nil otherwise.
	Document any
	Format   Format
}

// Manifest returns the parsed document as a [kube.Object], or nil when the
// format is not K8S or the document is not a mapping.
func (r Result) Manifest() kube.Object {
	switch m := r.Document.(type) {
	case map[string]any:
		return m
	case kube.Object:
		return m
	}

	return nil
}

// Classify determines the format of data.
func Classify(data []byte) (Result, error) {
	if err := parseXML(data); err == nil {
		return Result{Format: MSPL}, nil
	}

	doc, err := parseYAML(data)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnknownFormat, err)
	}

	return Result{Format: K8S, Document: doc}, nil
}

// IsXML reports whether data is a well-formed XML document.
func IsXML(data []byte) bool {
	return parseXML(data) == nil
}

// IsYAML reports whether data is a single non-empty YAML document.
func IsYAML(data []byte) bool {
	_, err := parseYAML(data)

	return err == nil
}

// parseXML checks that data holds exactly one root element, optionally
// surrounded by a prolog, comments, processing instructions and whitespace.
func parseXML(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyDocument
	}

	dec := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel

	var (
		depth    int
		rootSeen bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 && rootSeen {
				return ErrTrailingContent
			}

			rootSeen = true
			depth++

		case xml.EndElement:
			depth--

		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				if rootSeen {
					return ErrTrailingContent
				}

				return ErrNoRootElement
			}
		}
	}

	if !rootSeen {
		return ErrNoRootElement
	}

	return nil
}

// parseYAML decodes data as a single YAML document. Empty and null
// documents are rejected so that they are never routed as manifests.
func parseYAML(data []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var docs []any

	for {
		var doc any

		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}

		if doc != nil {
			docs = append(docs, doc)
		}
	}

	switch len(docs) {
	case 0:
		return nil, ErrEmptyDocument
	case 1:
		return docs[0], nil
	}

	return nil, fmt.Errorf("%w: found %d", ErrMultipleDocuments, len(docs))
}

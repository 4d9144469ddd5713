package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// MarshalDocument converts a document to indented JSON bytes.
func MarshalDocument(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDocument(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDocument decodes JSON bytes into a document. Missing node and
// edge arrays decode as empty slices.
func UnmarshalDocument(data []byte) (*Document, error) {
	return ReadDocument(bytes.NewReader(data))
}

// WriteDocument writes a document as indented JSON to w.
func WriteDocument(d *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	out := *d
	if err := enc.Encode(normalized(&out)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadDocument decodes a JSON document from r.
func ReadDocument(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return normalized(&d), nil
}

// WriteDocumentFile writes a document to a JSON file with 0644 permissions.
func WriteDocumentFile(d *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return writeAndClose(d, f, path)
}

// writeAndClose writes d to f and closes it. A failed close is reported,
// since buffered data may not have reached the disk.
func writeAndClose(d *Document, f io.WriteCloser, path string) error {
	if err := WriteDocument(d, f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// ReadDocumentFile reads a JSON document from a file.
func ReadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f)
}

// MarshalNodes encodes the nodes column stored by the SQL backends.
func MarshalNodes(nodes []Node) ([]byte, error) { return json.Marshal(nonNil(nodes)) }

// MarshalEdges encodes the edges column.
func MarshalEdges(edges []Edge) ([]byte, error) { return json.Marshal(nonNil(edges)) }

// MarshalEdgeOptions encodes the default_edge_options column. A nil value
// encodes as JSON null.
func MarshalEdgeOptions(o *DefaultEdgeOptions) ([]byte, error) { return json.Marshal(o) }

// UnmarshalColumns rebuilds a document from the three stored columns. Empty
// or null columns yield empty values.
func UnmarshalColumns(nodes, edges, options []byte) (*Document, error) {
	d := NewDocument()
	if len(nodes) > 0 {
		if err := json.Unmarshal(nodes, &d.Nodes); err != nil {
			return nil, fmt.Errorf("decode nodes: %w", err)
		}
	}
	if len(edges) > 0 {
		if err := json.Unmarshal(edges, &d.Edges); err != nil {
			return nil, fmt.Errorf("decode edges: %w", err)
		}
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &d.DefaultEdgeOptions); err != nil {
			return nil, fmt.Errorf("decode default edge options: %w", err)
		}
	}
	return normalized(d), nil
}

func normalized(d *Document) *Document {
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Edges == nil {
		d.Edges = []Edge{}
	}
	return d
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

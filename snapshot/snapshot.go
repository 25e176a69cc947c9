// Package snapshot stores drawing scenes as versioned session documents.
//
// A Document wraps the snapshot tree of a root node with a kind tag and a
// semantic format version. Documents are written as msgpack, the compact
// session format, or as JSON, which is also checked against an embedded
// JSON Schema on decode.
package snapshot

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/jinzhu/copier"
	"github.com/ugorji/go/codec"
	"github.com/xeipuuv/gojsonschema"

	"github.com/gogpu/drawing"
)

// Kind tags every session document.
const Kind = "drawing.session"

// Version is the format version written by New.
const Version = "1.0.0"

// Compatibility is the range of format versions Decode accepts.
const Compatibility = "^1.0.0"

var (
	// ErrUnsupportedVersion is returned for documents outside Compatibility.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
	// ErrInvalidDocument is returned for malformed documents.
	ErrInvalidDocument = errors.New("snapshot: invalid document")
	// ErrUnknownFormat is returned for an unrecognized encoding name.
	ErrUnknownFormat = errors.New("snapshot: unknown format")
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)
	compatible   = mustConstraint(Compatibility)
)

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Format selects a document encoding.
type Format int

// Encodings.
const (
	FormatMsgpack Format = iota
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	case FormatJSON:
		return "json"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat maps "msgpack" or "json" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "msgpack", "mpk":
		return FormatMsgpack, nil
	case "json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Document is a session file.
type Document struct {
	Kind    string            `json:"kind" codec:"kind"`
	Version string            `json:"version" codec:"version"`
	Root    *drawing.Snapshot `json:"root" codec:"root"`
}

// New captures root and its subtree.
func New(root *drawing.Node) *Document {
	return &Document{Kind: Kind, Version: Version, Root: root.Snapshot()}
}

// Restore rebuilds the scene held by d.
func (d *Document) Restore(opts ...drawing.NodeOption) (*drawing.Node, error) {
	if d.Root == nil {
		return nil, fmt.Errorf("%w: no root", ErrInvalidDocument)
	}
	return drawing.RestoreNode(d.Root, opts...)
}

// Check verifies the kind tag and the format version.
func (d *Document) Check() error {
	if d.Kind != Kind {
		return fmt.Errorf("%w: kind %q, want %q", ErrInvalidDocument, d.Kind, Kind)
	}
	v, err := semver.NewVersion(d.Version)
	if err != nil {
		return fmt.Errorf("%w: version %q: %v", ErrInvalidDocument, d.Version, err)
	}
	if !compatible.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, v, Compatibility)
	}
	if d.Root == nil {
		return fmt.Errorf("%w: no root", ErrInvalidDocument)
	}
	return nil
}

// Clone returns a deep copy of d that shares no slices with it.
func Clone(d *Document) (*Document, error) {
	var out Document
	if err := copier.CopyWithOption(&out, d, copier.Option{CaseSensitive: true, DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("snapshot: clone: %w", err)
	}
	return &out, nil
}

func msgpackHandle() *codec.MsgpackHandle {
	h := new(codec.MsgpackHandle)
	h.WriteExt = true
	h.RawToString = true
	return h
}

// Encode writes d to w.
func Encode(w io.Writer, d *Document, f Format) error {
	switch f {
	case FormatMsgpack:
		if err := codec.NewEncoder(w, msgpackHandle()).Encode(d); err != nil {
			return fmt.Errorf("snapshot: encode msgpack: %w", err)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("snapshot: encode json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
}

// Decode reads a document from r and checks it. JSON input is validated
// against the schema before it is decoded.
func Decode(r io.Reader, f Format) (*Document, error) {
	var d Document
	switch f {
	case FormatMsgpack:
		if err := codec.NewDecoder(r, msgpackHandle()).Decode(&d); err != nil {
			return nil, fmt.Errorf("%w: msgpack: %v", ErrInvalidDocument, err)
		}
	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("snapshot: read: %w", err)
		}
		if err := Validate(data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%w: json: %v", ErrInvalidDocument, err)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err := d.Check(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks a JSON document against the session schema.
func Validate(data []byte) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if res.Valid() {
		return nil
	}
	var b bytes.Buffer
	for i, e := range res.Errors() {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, b.String())
}

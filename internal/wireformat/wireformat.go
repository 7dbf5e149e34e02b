// Package wireformat implements the length-prefixed IR record stream
// spec.md §6 names as the wire format for IR artifacts: an outer
// metadata envelope, followed by node records then edge records, each
// individually length-prefixed, plus a companion per-repo file index.
package wireformat

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"sort"

	"github.com/codeintel-engine/engine/internal/ir"
)

// formatVersion is written into every envelope; a reader encountering
// any other value must refuse to decode rather than guess.
const formatVersion uint32 = 1

// Envelope is the fixed-size header preceding the record stream: the
// format version plus how many documents, nodes, and edges follow, so
// a reader can size its buffers and detect truncation.
type Envelope struct {
	Version       uint32
	DocumentCount uint32
	NodeCount     uint64
	EdgeCount     uint64
}

// WriteEnvelope writes e in a fixed binary layout (not length-prefixed
// or gob-encoded, since every reader must be able to parse it before
// it knows anything else about the stream).
func WriteEnvelope(w io.Writer, e Envelope) error {
	return binary.Write(w, binary.LittleEndian, e)
}

// ReadEnvelope reads an Envelope and rejects any version other than
// the one this package writes.
func ReadEnvelope(r io.Reader) (Envelope, error) {
	var e Envelope

	if err := binary.Read(r, binary.LittleEndian, &e); err != nil {
		return Envelope{}, fmt.Errorf("wireformat: read envelope: %w", err)
	}

	if e.Version != formatVersion {
		return Envelope{}, fmt.Errorf("wireformat: unsupported version %d", e.Version)
	}

	return e, nil
}

// writeRecord gob-encodes v and writes it as a little-endian u32 byte
// length followed by the encoded payload, per spec.md §6 ("each
// record begins with a little-endian u32 byte length"). Payload
// encoding reuses encoding/gob, the same serialization the rest of
// this codebase's disk-spill paths use
// (internal/analyzers/common/spillstore), rather than a hand-rolled
// binary layout per field.
func writeRecord(w io.Writer, v any) (int, error) {
	var buf bytes.Buffer

	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return 0, fmt.Errorf("wireformat: encode record: %w", err)
	}

	var lenPrefix [4]byte
	binary.LittleEndian.PutUint32(lenPrefix[:], uint32(buf.Len()))

	n1, err := w.Write(lenPrefix[:])
	if err != nil {
		return n1, fmt.Errorf("wireformat: write record length: %w", err)
	}

	n2, err := w.Write(buf.Bytes())
	if err != nil {
		return n1 + n2, fmt.Errorf("wireformat: write record payload: %w", err)
	}

	return n1 + n2, nil
}

// readRecord reads one length-prefixed record into v, a pointer to
// the target type.
func readRecord(r io.Reader, v any) (int, error) {
	var lenPrefix [4]byte

	n1, err := io.ReadFull(r, lenPrefix[:])
	if err != nil {
		return n1, fmt.Errorf("wireformat: read record length: %w", err)
	}

	length := binary.LittleEndian.Uint32(lenPrefix[:])
	payload := make([]byte, length)

	n2, err := io.ReadFull(r, payload)
	if err != nil {
		return n1 + n2, fmt.Errorf("wireformat: read record payload: %w", err)
	}

	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(v); err != nil {
		return n1 + n2, fmt.Errorf("wireformat: decode record: %w", err)
	}

	return n1 + n2, nil
}

// EncodeDocuments writes the envelope followed by every document's
// nodes (grouped by document, each document's nodes already ordered
// per spec.md §6's node ordering contract via SortedCopy) and then
// every edge in the repo, globally ordered by (source_id, target_id,
// kind, emission_sequence). It returns a FileIndex mapping each
// document's file path to the byte range its node records occupy
// within the stream.
func EncodeDocuments(w io.Writer, docs []*ir.Document) (FileIndex, error) {
	sorted := make([]*ir.Document, len(docs))
	for i, d := range docs {
		sorted[i] = d.SortedCopy()
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FilePath < sorted[j].FilePath
	})

	nodeCount, edgeCount := uint64(0), uint64(0)

	var allEdges []ir.Edge

	for _, d := range sorted {
		nodeCount += uint64(len(d.Nodes))

		allEdges = append(allEdges, d.Edges...)
	}

	sort.SliceStable(allEdges, func(i, j int) bool {
		a, b := allEdges[i], allEdges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}

		if a.Target != b.Target {
			return a.Target < b.Target
		}

		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}

		return a.Seq < b.Seq
	})

	edgeCount = uint64(len(allEdges))

	env := Envelope{Version: formatVersion, DocumentCount: uint32(len(sorted)), NodeCount: nodeCount, EdgeCount: edgeCount}
	if err := WriteEnvelope(w, env); err != nil {
		return nil, err
	}

	index := make(FileIndex, len(sorted))
	offset := uint64(binary.Size(env))

	for _, d := range sorted {
		start := offset

		for _, n := range d.Nodes {
			written, err := writeRecord(w, n)
			if err != nil {
				return nil, err
			}

			offset += uint64(written)
		}

		index[d.FilePath] = FileIndexEntry{Offset: start, Length: offset - start}
	}

	for _, e := range allEdges {
		edgeCopy := e

		written, err := writeRecord(w, &edgeCopy)
		if err != nil {
			return nil, err
		}

		offset += uint64(written)
	}

	return index, nil
}

// DecodeDocuments reads back every node and edge written by
// EncodeDocuments. Nodes are returned in stream order (already
// sorted per the wire-format contract); reconstructing per-file
// Documents from them is the caller's responsibility, since the
// stream itself only groups nodes by file contiguously rather than
// nesting them.
func DecodeDocuments(r io.Reader) ([]*ir.Node, []ir.Edge, error) {
	env, err := ReadEnvelope(r)
	if err != nil {
		return nil, nil, err
	}

	nodes := make([]*ir.Node, 0, env.NodeCount)

	for i := uint64(0); i < env.NodeCount; i++ {
		var n ir.Node

		if _, err := readRecord(r, &n); err != nil {
			return nil, nil, fmt.Errorf("wireformat: decode node %d: %w", i, err)
		}

		nodes = append(nodes, &n)
	}

	edges := make([]ir.Edge, 0, env.EdgeCount)

	for i := uint64(0); i < env.EdgeCount; i++ {
		var e ir.Edge

		if _, err := readRecord(r, &e); err != nil {
			return nil, nil, fmt.Errorf("wireformat: decode edge %d: %w", i, err)
		}

		edges = append(edges, e)
	}

	return nodes, edges, nil
}

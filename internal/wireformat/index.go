package wireformat

import (
	"encoding/binary"
	"fmt"
	"io"
)

// FileIndexEntry locates a file's node-record run within the record
// stream EncodeDocuments produced.
type FileIndexEntry struct {
	Offset uint64
	Length uint64
}

// FileIndex is the per-repo directory spec.md §6 describes: "mapping
// file_path -> offset/length of its record range, sized ~66 bytes per
// file" (a typical path of a few dozen bytes plus the two u64 fields
// and a length prefix lands in that neighborhood; entries here are
// variable-length on the path, so the figure is descriptive rather
// than a fixed record size this package enforces).
type FileIndex map[string]FileIndexEntry

// WriteFileIndex serializes idx as a sequence of (path length, path,
// offset, length) records.
func WriteFileIndex(w io.Writer, idx FileIndex) error {
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(idx)))

	if _, err := w.Write(countBuf[:]); err != nil {
		return fmt.Errorf("wireformat: write file index count: %w", err)
	}

	for path, entry := range idx {
		if err := writeIndexEntry(w, path, entry); err != nil {
			return err
		}
	}

	return nil
}

func writeIndexEntry(w io.Writer, path string, entry FileIndexEntry) error {
	var pathLenBuf [4]byte
	binary.LittleEndian.PutUint32(pathLenBuf[:], uint32(len(path)))

	if _, err := w.Write(pathLenBuf[:]); err != nil {
		return fmt.Errorf("wireformat: write index path length for %q: %w", path, err)
	}

	if _, err := io.WriteString(w, path); err != nil {
		return fmt.Errorf("wireformat: write index path for %q: %w", path, err)
	}

	var fieldsBuf [16]byte
	binary.LittleEndian.PutUint64(fieldsBuf[0:8], entry.Offset)
	binary.LittleEndian.PutUint64(fieldsBuf[8:16], entry.Length)

	if _, err := w.Write(fieldsBuf[:]); err != nil {
		return fmt.Errorf("wireformat: write index fields for %q: %w", path, err)
	}

	return nil
}

// ReadFileIndex deserializes a FileIndex written by WriteFileIndex.
func ReadFileIndex(r io.Reader) (FileIndex, error) {
	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, fmt.Errorf("wireformat: read file index count: %w", err)
	}

	count := binary.LittleEndian.Uint32(countBuf[:])
	idx := make(FileIndex, count)

	for i := uint32(0); i < count; i++ {
		path, entry, err := readIndexEntry(r)
		if err != nil {
			return nil, fmt.Errorf("wireformat: read index entry %d: %w", i, err)
		}

		idx[path] = entry
	}

	return idx, nil
}

func readIndexEntry(r io.Reader) (string, FileIndexEntry, error) {
	var pathLenBuf [4]byte
	if _, err := io.ReadFull(r, pathLenBuf[:]); err != nil {
		return "", FileIndexEntry{}, err
	}

	pathLen := binary.LittleEndian.Uint32(pathLenBuf[:])
	pathBytes := make([]byte, pathLen)

	if _, err := io.ReadFull(r, pathBytes); err != nil {
		return "", FileIndexEntry{}, err
	}

	var fieldsBuf [16]byte
	if _, err := io.ReadFull(r, fieldsBuf[:]); err != nil {
		return "", FileIndexEntry{}, err
	}

	entry := FileIndexEntry{
		Offset: binary.LittleEndian.Uint64(fieldsBuf[0:8]),
		Length: binary.LittleEndian.Uint64(fieldsBuf[8:16]),
	}

	return string(pathBytes), entry, nil
}

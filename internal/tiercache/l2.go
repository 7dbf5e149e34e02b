package tiercache

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/edsrzf/mmap-go"
	"github.com/pierrec/lz4/v4"
)

// indexEntry records where a blob lives within the shard file.
type indexEntry struct {
	offset    int64
	length    int64 // compressed length
	rawLength int64 // decompressed length; lz4 block decompression needs it
}

// flushRequest is a buffered write waiting to be appended to the shard
// and index files by the background flush loop. A zero-value request
// (empty key) is a flush barrier: it carries no data, it just marks a
// point the flush loop must have drained past before acking.
type flushRequest struct {
	key   string
	value []byte
	ack   chan struct{}
}

const shardFileName = "blobs.shard"
const indexFileName = "blobs.index"
const defaultQueueDepth = 256

// DiskCache is the L2 tier: a content-addressed blob store with a
// companion index (spec.md §4.J, "L2 disk: content-addressed blobs
// with a companion index; reads are mmap'd; writes are buffered and
// flushed asynchronously"). Blobs are appended, LZ4-compressed, to a
// single append-only shard file; a companion index file records each
// key's (offset, length, rawLength) so the in-memory index can be
// rebuilt by replaying it on open instead of re-scanning the shard.
// Reads mmap the shard file and decompress directly out of the mapped
// region, so a warm read never copies the compressed bytes through an
// intermediate buffer before decompression.
type DiskCache struct {
	shardPath string
	indexPath string
	shard     *os.File
	indexFile *os.File

	mu     sync.RWMutex
	index  map[string]indexEntry
	mapped mmap.MMap // nil until the shard has at least one flushed byte

	writes chan flushRequest
	done   chan struct{}
	wg     sync.WaitGroup

	flushErrMu sync.Mutex
	flushErr   error

	// persisted tracks fingerprints already appended to the shard file,
	// so a Put for content this tier has already persisted is dropped
	// instead of appending a redundant copy. nil disables the check.
	persisted *CuckooFingerprintSet
}

// DiskCacheOptions configures a DiskCache.
type DiskCacheOptions struct {
	// Dir is the directory the shard and index files live in. It must
	// already exist.
	Dir string
	// QueueDepth bounds how many pending writes may be buffered before
	// Put blocks on the flush loop draining it. Zero selects a default.
	QueueDepth int
	// DedupCapacity, if nonzero, sizes a CuckooFingerprintSet tracking
	// which fingerprints have already been flushed to the shard file,
	// so repeated Puts for unchanged content skip the append entirely.
	DedupCapacity uint
}

// NewDiskCache opens (creating if absent) the shard and index files
// under opts.Dir, replays the index to rebuild the in-memory lookup
// table, and starts the background flush loop.
func NewDiskCache(opts DiskCacheOptions) (*DiskCache, error) {
	if opts.Dir == "" {
		return nil, errors.New("tiercache: DiskCacheOptions.Dir is required")
	}

	queueDepth := opts.QueueDepth
	if queueDepth <= 0 {
		queueDepth = defaultQueueDepth
	}

	shardPath := filepath.Join(opts.Dir, shardFileName)
	indexPath := filepath.Join(opts.Dir, indexFileName)

	shard, err := os.OpenFile(shardPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("tiercache: open shard file: %w", err)
	}

	indexFile, err := os.OpenFile(indexPath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		shard.Close()

		return nil, fmt.Errorf("tiercache: open index file: %w", err)
	}

	dc := &DiskCache{
		shardPath: shardPath,
		indexPath: indexPath,
		shard:     shard,
		indexFile: indexFile,
		index:     make(map[string]indexEntry),
		writes:    make(chan flushRequest, queueDepth),
		done:      make(chan struct{}),
	}

	if opts.DedupCapacity > 0 {
		dedup, err := NewCuckooFingerprintSet(opts.DedupCapacity)
		if err != nil {
			shard.Close()
			indexFile.Close()

			return nil, fmt.Errorf("tiercache: dedup set: %w", err)
		}

		dc.persisted = dedup
	}

	if err := dc.loadIndex(); err != nil {
		shard.Close()
		indexFile.Close()

		return nil, err
	}

	if err := dc.remapLocked(); err != nil {
		shard.Close()
		indexFile.Close()

		return nil, err
	}

	dc.wg.Add(1)

	go dc.flushLoop()

	return dc, nil
}

// loadIndex replays the companion index file, rebuilding c.index.
// Later entries for the same key supersede earlier ones, matching the
// shard file's last-write-wins semantics.
func (c *DiskCache) loadIndex() error {
	if _, err := c.indexFile.Seek(0, 0); err != nil {
		return fmt.Errorf("tiercache: seek index file: %w", err)
	}

	r := bufio.NewReader(c.indexFile)

	for {
		var keyLen uint32

		if err := binary.Read(r, binary.LittleEndian, &keyLen); err != nil {
			break // EOF or short read: stop at the last complete record
		}

		keyBytes := make([]byte, keyLen)
		if _, err := io.ReadFull(r, keyBytes); err != nil {
			break
		}

		var ent indexEntry

		if err := binary.Read(r, binary.LittleEndian, &ent.offset); err != nil {
			break
		}

		if err := binary.Read(r, binary.LittleEndian, &ent.length); err != nil {
			break
		}

		if err := binary.Read(r, binary.LittleEndian, &ent.rawLength); err != nil {
			break
		}

		key := string(keyBytes)
		c.index[key] = ent

		if c.persisted != nil {
			c.persisted.Add(key)
		}
	}

	if _, err := c.indexFile.Seek(0, 2); err != nil {
		return fmt.Errorf("tiercache: seek index file to end: %w", err)
	}

	return nil
}

// Get returns the decompressed blob for key, reading it out of the
// mmap'd shard file. A miss is reported both when the key is unknown
// and when a pending write for it has not yet been flushed; the
// caller falls through to recomputation either way.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ent, ok := c.index[key]
	if !ok {
		return nil, false
	}

	compressed := c.mapped[ent.offset : ent.offset+ent.length]
	out := make([]byte, ent.rawLength)

	n, err := lz4.UncompressBlock(compressed, out)
	if err != nil {
		return nil, false
	}

	return out[:n], true
}

// Put enqueues value under key for asynchronous, LZ4-compressed
// append to the shard and index files. Put returns before the write
// lands; a Get for the same key immediately afterward may still miss
// until the background flush loop catches up.
func (c *DiskCache) Put(key string, value []byte) {
	select {
	case c.writes <- flushRequest{key: key, value: value}:
	case <-c.done:
	}
}

// Flush blocks until every Put issued before the call has been
// appended and is visible to Get.
func (c *DiskCache) Flush() error {
	ack := make(chan struct{})
	c.writes <- flushRequest{ack: ack}
	<-ack

	return c.FlushErr()
}

// FlushErr returns the most recent error encountered by the
// background flush loop, if any.
func (c *DiskCache) FlushErr() error {
	c.flushErrMu.Lock()
	defer c.flushErrMu.Unlock()

	return c.flushErr
}

// Close stops the flush loop, flushing any writes queued before the
// call, and closes the shard and index files.
func (c *DiskCache) Close() error {
	close(c.done)
	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mapped != nil {
		_ = c.mapped.Unmap()
		c.mapped = nil
	}

	shardErr := c.shard.Close()
	indexErr := c.indexFile.Close()

	if shardErr != nil {
		return shardErr
	}

	return indexErr
}

// flushLoop drains writes, compressing and appending each to the
// shard and index files, then remaps the shard so Gets observe it.
// Grounded on the teacher's worker-pool pattern (internal/framework,
// a buffered channel drained by a goroutine) applied here to a
// single-writer append-only log instead of a multi-worker pool, since
// the shard file has exactly one writer by construction.
func (c *DiskCache) flushLoop() {
	defer c.wg.Done()

	for {
		select {
		case req := <-c.writes:
			if req.ack != nil {
				close(req.ack)

				continue
			}

			if err := c.appendAndRemap(req.key, req.value); err != nil {
				c.flushErrMu.Lock()
				c.flushErr = err
				c.flushErrMu.Unlock()
			}
		case <-c.done:
			c.drainPending()

			return
		}
	}
}

func (c *DiskCache) drainPending() {
	for {
		select {
		case req := <-c.writes:
			if req.ack != nil {
				close(req.ack)

				continue
			}

			_ = c.appendAndRemap(req.key, req.value)
		default:
			return
		}
	}
}

func (c *DiskCache) appendAndRemap(key string, value []byte) error {
	c.mu.RLock()
	alreadyPersisted := c.persisted != nil && c.persisted.Contains(key)
	c.mu.RUnlock()

	if alreadyPersisted {
		return nil
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(value)))

	n, err := lz4.CompressBlock(value, compressed, nil)
	if err != nil {
		return fmt.Errorf("tiercache: compress blob for %q: %w", key, err)
	}

	compressed = compressed[:n]

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mapped != nil {
		if err := c.mapped.Unmap(); err != nil {
			return fmt.Errorf("tiercache: unmap shard before append: %w", err)
		}

		c.mapped = nil
	}

	info, err := c.shard.Stat()
	if err != nil {
		return fmt.Errorf("tiercache: stat shard file: %w", err)
	}

	offset := info.Size()

	if _, err := c.shard.WriteAt(compressed, offset); err != nil {
		return fmt.Errorf("tiercache: append blob for %q: %w", key, err)
	}

	ent := indexEntry{offset: offset, length: int64(n), rawLength: int64(len(value))}

	if err := c.appendIndexRecord(key, ent); err != nil {
		return err
	}

	c.index[key] = ent

	if c.persisted != nil {
		c.persisted.Add(key)
	}

	return c.remapLocked()
}

// appendIndexRecord appends a (keyLen, key, offset, length, rawLength)
// record to the companion index file. Must be called with c.mu held.
func (c *DiskCache) appendIndexRecord(key string, ent indexEntry) error {
	buf := make([]byte, 0, 4+len(key)+8*3)

	var keyLenBytes [4]byte
	binary.LittleEndian.PutUint32(keyLenBytes[:], uint32(len(key)))
	buf = append(buf, keyLenBytes[:]...)
	buf = append(buf, key...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(ent.offset))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(ent.length))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(ent.rawLength))

	if _, err := c.indexFile.Write(buf); err != nil {
		return fmt.Errorf("tiercache: append index record for %q: %w", key, err)
	}

	return nil
}

// remapLocked (re)establishes the read-only mmap over the shard
// file's current contents. Must be called with c.mu held. A
// zero-length file is left unmapped, since mmap.Map rejects a
// zero-length mapping.
func (c *DiskCache) remapLocked() error {
	info, err := c.shard.Stat()
	if err != nil {
		return fmt.Errorf("tiercache: stat shard file: %w", err)
	}

	if info.Size() == 0 {
		return nil
	}

	m, err := mmap.Map(c.shard, mmap.RDONLY, 0)
	if err != nil {
		return fmt.Errorf("tiercache: mmap shard file: %w", err)
	}

	c.mapped = m

	return nil
}

package parser

import (
	"errors"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultBlockSize matches the smallest IMG filesystem block.
const DefaultBlockSize = 512

// BlockStats reports block cache effectiveness.
type BlockStats struct {
	Hits   int
	Misses int
	Cached int
}

// blockSource serves subfile bytes from fixed-size blocks of the backing
// source, keeping recently used blocks in an LRU cache. Table decoding reads
// many 1-4 byte fields, so each source block is fetched once per decode.
type blockSource struct {
	src       io.ReaderAt
	size      int64
	blockSize int64
	cache     *lru.Cache[int64, []byte] // nil disables caching
	hits      int
	misses    int
}

func newBlockSource(src io.ReaderAt, size int64, blockSize, cacheBlocks int) (*blockSource, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	bs := &blockSource{src: src, size: size, blockSize: int64(blockSize)}
	if cacheBlocks > 0 {
		cache, err := lru.New[int64, []byte](cacheBlocks)
		if err != nil {
			return nil, fmt.Errorf("create block cache: %w", err)
		}
		bs.cache = cache
	}
	return bs, nil
}

// block returns the contents of block n, which may be shorter than blockSize
// for the final block of the subfile.
func (bs *blockSource) block(n int64) ([]byte, error) {
	if bs.cache != nil {
		if b, ok := bs.cache.Get(n); ok {
			bs.hits++
			return b, nil
		}
	}
	bs.misses++

	start := n * bs.blockSize
	length := bs.blockSize
	if start+length > bs.size {
		length = bs.size - start
	}
	buf := make([]byte, length)
	read, err := bs.src.ReadAt(buf, start)
	if read < len(buf) {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: source ended at 0x%X, declared size 0x%X",
				ErrTruncated, start+int64(read), bs.size)
		}
		return nil, fmt.Errorf("read block %d: %w", n, err)
	}

	if bs.cache != nil {
		bs.cache.Add(n, buf)
	}
	return buf, nil
}

// readAt fills p from subfile offset off. The caller guarantees that
// off+len(p) does not exceed the subfile size.
func (bs *blockSource) readAt(p []byte, off int64) error {
	for len(p) > 0 {
		n := off / bs.blockSize
		b, err := bs.block(n)
		if err != nil {
			return err
		}
		copied := copy(p, b[off-n*bs.blockSize:])
		p = p[copied:]
		off += int64(copied)
	}
	return nil
}

func (bs *blockSource) stats() BlockStats {
	st := BlockStats{Hits: bs.hits, Misses: bs.misses}
	if bs.cache != nil {
		st.Cached = bs.cache.Len()
	}
	return st
}

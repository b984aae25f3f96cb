package pts

import (
	"bytes"
	"fmt"
	"slices"
)

const (
	// BlockMarker starts every block header.
	BlockMarker = 0x5a

	// blockHeaderSize is marker + type + size; the content region (which
	// starts with the content-type tag) follows it.
	blockHeaderSize = 7

	endiannessOffset = 0x11

	DefaultMaxDepth  = 16
	DefaultMaxBlocks = 1 << 20
)

// BlockID indexes Forest.Blocks.
type BlockID int

// NoParent is the Parent of a root block.
const NoParent BlockID = -1

// Block is one node of the self-describing tree. Offset is where the
// content region starts (Pos+7), so Offset+Size is the block's end.
type Block struct {
	Pos         uint32
	Offset      uint32
	Size        uint32
	Type        uint16
	ContentType ContentType
	Parent      BlockID
	Children    []BlockID
}

// End is the first byte past the block's content.
func (b *Block) End() uint32 {
	return b.Offset + b.Size
}

// Forest is the arena holding every block found in a buffer.
type Forest struct {
	Blocks   []Block
	Roots    []BlockID
	Warnings []Warning
}

// Block returns the block with the given id.
func (f *Forest) Block(id BlockID) *Block {
	return &f.Blocks[id]
}

// ChildrenOf returns the ids of id's children carrying one of the given tags,
// in file order.
func (f *Forest) ChildrenOf(id BlockID, tags ...ContentType) []BlockID {
	var out []BlockID
	for _, c := range f.Blocks[id].Children {
		ct := f.Blocks[c].ContentType
		for _, t := range tags {
			if ct == t {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// IsBigEndian reads the global endianness flag of a decoded buffer.
func IsBigEndian(buf []byte) bool {
	return len(buf) > endiannessOffset && buf[endiannessOffset] != 0
}

// TreeOptions bound the work done while rebuilding the tree.
type TreeOptions struct {
	MaxDepth  int
	MaxBlocks int
}

func (o TreeOptions) withDefaults() TreeOptions {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxBlocks <= 0 {
		o.MaxBlocks = DefaultMaxBlocks
	}
	return o
}

type treeBuilder struct {
	r       Reader
	opts    TreeOptions
	forest  *Forest
	limited bool
}

// BuildForest scans a decoded buffer for block markers and rebuilds the
// nested block tree. Candidates that fail validation are skipped silently.
func BuildForest(buf []byte, bigEndian bool, opts TreeOptions) *Forest {
	b := &treeBuilder{
		r:      NewReader(buf, bigEndian),
		opts:   opts.withDefaults(),
		forest: &Forest{},
	}

	pos := HeaderSize
	for pos < len(buf) {
		next := bytes.IndexByte(buf[pos:], BlockMarker)
		if next < 0 {
			break
		}
		pos += next
		id, ok := b.parseAt(pos, NoParent, uint32(len(buf)), 0)
		if !ok {
			pos++
			continue
		}
		b.forest.Roots = append(b.forest.Roots, id)
		pos += int(b.forest.Blocks[id].Size) + blockHeaderSize
	}
	return b.forest
}

// blockAt validates the header of a single block at pos against the whole
// buffer without discovering children.
func blockAt(buf []byte, bigEndian bool, pos int) (Block, bool) {
	b := &treeBuilder{r: NewReader(buf, bigEndian)}
	return b.header(pos, uint32(len(buf)))
}

// header decodes and validates the block header at pos against bound.
func (b *treeBuilder) header(pos int, bound uint32) (Block, bool) {
	if pos < 0 || uint64(pos)+blockHeaderSize+2 > uint64(bound) {
		return Block{}, false
	}
	if marker, err := b.r.U8(pos); err != nil || marker != BlockMarker {
		return Block{}, false
	}
	typ, err := b.r.U16(pos + 1)
	if err != nil || typ&0xff00 == 0xff00 {
		return Block{}, false
	}
	size, err := b.r.U32(pos + 3)
	if err != nil {
		return Block{}, false
	}
	ct, err := b.r.U16(pos + blockHeaderSize)
	if err != nil {
		return Block{}, false
	}
	offset := uint64(pos) + blockHeaderSize
	if offset+uint64(size) > uint64(bound) {
		return Block{}, false
	}
	return Block{
		Pos:         uint32(pos),
		Offset:      uint32(offset),
		Size:        size,
		Type:        typ,
		ContentType: ContentType(ct),
	}, true
}

// parseAt stores the block at pos and recursively discovers its children.
func (b *treeBuilder) parseAt(pos int, parent BlockID, bound uint32, depth int) (BlockID, bool) {
	blk, ok := b.header(pos, bound)
	if !ok {
		return 0, false
	}
	if len(b.forest.Blocks) >= b.opts.MaxBlocks {
		if !b.limited {
			b.limited = true
			b.warn(blk.Pos, fmt.Sprintf("block limit %d reached", b.opts.MaxBlocks))
		}
		return 0, false
	}
	blk.Parent = parent
	id := BlockID(len(b.forest.Blocks))
	b.forest.Blocks = append(b.forest.Blocks, blk)

	if blk.Size <= 1 {
		return id, true
	}
	if depth >= b.opts.MaxDepth {
		if b.hasChildCandidate(blk) {
			b.warn(blk.Pos, fmt.Sprintf("depth limit %d reached", b.opts.MaxDepth))
		}
		return id, true
	}

	// Children are searched from the second content byte. A confirmed child
	// is skipped whole; otherwise the cursor moves one byte.
	end := blk.End()
	for i := uint32(1); i < blk.Size; {
		childPos := blk.Offset + i
		child, ok := b.parseAt(int(childPos), id, end, depth+1)
		if !ok {
			i++
			continue
		}
		b.forest.Blocks[id].Children = append(b.forest.Blocks[id].Children, child)
		i += b.forest.Blocks[child].Size + blockHeaderSize
	}
	return id, true
}

// hasChildCandidate reports whether the content past the first byte holds
// a block marker at all.
func (b *treeBuilder) hasChildCandidate(blk Block) bool {
	content, err := b.r.Bytes(int(blk.Offset)+1, int(blk.Size)-1)
	return err == nil && bytes.IndexByte(content, BlockMarker) >= 0
}

func (b *treeBuilder) warn(pos uint32, reason string) {
	b.forest.Warnings = append(b.forest.Warnings, Warning{Kind: WarnMalformedTree, Offset: pos, Reason: reason})
}

// Index buckets every block of a forest by content type, in file order.
type Index struct {
	forest  *Forest
	buckets map[ContentType][]BlockID
}

// NewIndex runs the one-time classification pass over all blocks.
func NewIndex(f *Forest) *Index {
	idx := &Index{forest: f, buckets: make(map[ContentType][]BlockID)}
	var walk func(id BlockID)
	walk = func(id BlockID) {
		ct := f.Blocks[id].ContentType
		idx.buckets[ct] = append(idx.buckets[ct], id)
		for _, c := range f.Blocks[id].Children {
			walk(c)
		}
	}
	for _, root := range f.Roots {
		walk(root)
	}
	return idx
}

// Of returns the blocks tagged with any of the given content types in file
// order. Ids are assigned in pre-order, so sorting them restores file order.
func (idx *Index) Of(tags ...ContentType) []BlockID {
	if len(tags) == 1 {
		return idx.buckets[tags[0]]
	}
	var out []BlockID
	for _, t := range tags {
		out = append(out, idx.buckets[t]...)
	}
	slices.Sort(out)
	return out
}

// Forest returns the indexed forest.
func (idx *Index) Forest() *Forest {
	return idx.forest
}

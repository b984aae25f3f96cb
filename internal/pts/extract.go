package pts

import "go.uber.org/zap"

// extractor reads entities out of an indexed forest. It never mutates the
// buffer or the forest, so one instance serves every entity family.
type extractor struct {
	r     Reader
	f     *Forest
	idx   *Index
	sugar *zap.SugaredLogger
}

func newExtractor(r Reader, idx *Index, sugar *zap.SugaredLogger) *extractor {
	return &extractor{r: r, f: idx.Forest(), idx: idx, sugar: sugar}
}

// stringAt reads a length-prefixed string at off bytes into the block's
// content region.
func (x *extractor) stringAt(id BlockID, off int) (string, int, error) {
	return x.r.String(int(x.f.Block(id).Offset) + off)
}

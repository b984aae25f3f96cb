package converter

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// outputNames hands out output file names so that two inputs never write
// the same path. A name stays with the input that first took it.
type outputNames struct {
	mu    sync.Mutex
	owner map[string]string
}

func newOutputNames() *outputNames {
	return &outputNames{owner: make(map[string]string)}
}

// reserve returns the first candidate, with ext appended, that is free in
// dir or already held by inputFile. Empty candidates are skipped. When every
// candidate is taken, the last usable one gets a numeric suffix. With no
// usable candidate the name is "output".
func (n *outputNames) reserve(dir, ext, inputFile string, candidates ...string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	take := func(name string) bool {
		key := filepath.Join(dir, name+ext)
		if owner, ok := n.owner[key]; ok && owner != inputFile {
			return false
		}
		n.owner[key] = inputFile
		return true
	}

	last := ""
	for _, name := range candidates {
		if name == "" {
			continue
		}
		if take(name) {
			return name + ext
		}
		last = name
	}
	if last == "" {
		last = "output"
		if take(last) {
			return last + ext
		}
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s-%d", last, i)
		if take(name) {
			return name + ext
		}
	}
}

// baseName strips the extension of a file name and makes it safe to write.
// Names left with nothing but underscores come back empty.
func baseName(name string) string {
	name = cleanFilename(strings.TrimSuffix(name, filepath.Ext(name)))
	if strings.Trim(name, "_") == "" {
		return ""
	}
	return name
}

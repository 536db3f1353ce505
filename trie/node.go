package trie

import (
	"github.com/ethereum/go-ethereum/rlp"
)

const (
	branchWidth = 16
	// children whose encoding is shorter than this are embedded in their parent instead of hashed
	inlineThreshold = 32
)

type node interface {
	encode() []byte
}

type leafNode struct {
	path  []byte
	value []byte
	enc   []byte
}

type extensionNode struct {
	path  []byte
	child node
	enc   []byte
}

type branchNode struct {
	children [branchWidth]node
	value    []byte
	enc      []byte
}

func (n *leafNode) encode() []byte {
	if n.enc != nil {
		return n.enc
	}
	w := rlp.NewEncoderBuffer(nil)
	idx := w.List()
	w.WriteBytes(nibblesToCompact(n.path, true))
	w.WriteBytes(n.value)
	w.ListEnd(idx)
	n.enc = finish(&w)

	return n.enc
}

func (n *extensionNode) encode() []byte {
	if n.enc != nil {
		return n.enc
	}
	w := rlp.NewEncoderBuffer(nil)
	idx := w.List()
	w.WriteBytes(nibblesToCompact(n.path, false))
	writeReference(&w, n.child)
	w.ListEnd(idx)
	n.enc = finish(&w)

	return n.enc
}

func (n *branchNode) encode() []byte {
	if n.enc != nil {
		return n.enc
	}
	w := rlp.NewEncoderBuffer(nil)
	idx := w.List()
	for _, child := range n.children {
		writeReference(&w, child)
	}
	w.WriteBytes(n.value)
	w.ListEnd(idx)
	n.enc = finish(&w)

	return n.enc
}

// writeReference writes how a parent points to child: empty string, the child's own
// encoding when it is small, or the hash of that encoding.
func writeReference(w *rlp.EncoderBuffer, child node) {
	if child == nil {
		w.Write(rlp.EmptyString) //nolint:errcheck
		return
	}
	enc := child.encode()
	if len(enc) < inlineThreshold {
		w.Write(enc) //nolint:errcheck
		return
	}
	h := keccak(enc)
	w.WriteBytes(h[:])
}

func finish(w *rlp.EncoderBuffer) []byte {
	out := w.ToBytes()
	w.Flush() //nolint:errcheck

	return out
}

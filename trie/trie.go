// Package trie implements the Merkle-Patricia trie used by EVM chains to commit to the
// transactions and receipts of a block, together with inclusion-proof extraction and
// verification. A Trie lives in memory only and is not safe for concurrent use.
package trie

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
)

// EmptyRoot is the root of a trie without keys: keccak256(rlp(""))
var EmptyRoot = common.HexToHash("0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")

// Trie is a radix-16 Merkle-Patricia trie
type Trie struct {
	root node
	size int
}

// New returns an empty trie
func New() *Trie {
	return &Trie{}
}

// Len returns the number of keys in the trie
func (t *Trie) Len() int {
	return t.size
}

// Insert sets key to value, overwriting any previous value. Keys may be inserted in any order.
func (t *Trie) Insert(key, value []byte) error {
	if len(value) == 0 {
		return ErrEmptyValue
	}
	var added bool
	t.root, added = insert(t.root, keyToNibbles(key), bytes.Clone(value))
	if added {
		t.size++
	}

	return nil
}

func insert(n node, path, value []byte) (node, bool) {
	switch n := n.(type) {
	case nil:
		return &leafNode{path: path, value: value}, true

	case *leafNode:
		p := prefixLen(n.path, path)
		if p == len(n.path) && p == len(path) {
			return &leafNode{path: path, value: value}, false
		}
		branch := &branchNode{}
		if p == len(n.path) {
			branch.value = n.value
		} else {
			branch.children[n.path[p]] = &leafNode{path: n.path[p+1:], value: n.value}
		}
		if p == len(path) {
			branch.value = value
		} else {
			branch.children[path[p]] = &leafNode{path: path[p+1:], value: value}
		}

		return wrapInExtension(path[:p], branch), true

	case *extensionNode:
		p := prefixLen(n.path, path)
		if p == len(n.path) {
			child, added := insert(n.child, path[p:], value)
			n.child = child
			n.enc = nil

			return n, added
		}
		branch := &branchNode{}
		if p+1 == len(n.path) {
			branch.children[n.path[p]] = n.child
		} else {
			branch.children[n.path[p]] = &extensionNode{path: n.path[p+1:], child: n.child}
		}
		if p == len(path) {
			branch.value = value
		} else {
			branch.children[path[p]] = &leafNode{path: path[p+1:], value: value}
		}

		return wrapInExtension(path[:p], branch), true

	case *branchNode:
		n.enc = nil
		if len(path) == 0 {
			added := len(n.value) == 0
			n.value = value

			return n, added
		}
		child, added := insert(n.children[path[0]], path[1:], value)
		n.children[path[0]] = child

		return n, added

	default:
		panic("unknown trie node")
	}
}

func wrapInExtension(path []byte, branch *branchNode) node {
	if len(path) == 0 {
		return branch
	}

	return &extensionNode{path: path, child: branch}
}

// Get returns the value stored under key
func (t *Trie) Get(key []byte) ([]byte, bool) {
	path := keyToNibbles(key)
	n := t.root
	for {
		switch cur := n.(type) {
		case nil:
			return nil, false
		case *leafNode:
			if !bytes.Equal(cur.path, path) {
				return nil, false
			}

			return bytes.Clone(cur.value), true
		case *extensionNode:
			if !hasPrefix(path, cur.path) {
				return nil, false
			}
			path = path[len(cur.path):]
			n = cur.child
		case *branchNode:
			if len(path) == 0 {
				return bytes.Clone(cur.value), len(cur.value) > 0
			}
			n = cur.children[path[0]]
			path = path[1:]
		}
	}
}

// Root returns the root hash. The top node is always hashed, whatever its size.
func (t *Trie) Root() common.Hash {
	if t.root == nil {
		return EmptyRoot
	}

	return keccak(t.root.encode())
}

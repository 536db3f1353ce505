package trie

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Proof is the list of node encodings on the path from the root to a key, root first.
// Nodes embedded in their parent are listed as well.
type Proof [][]byte

// Encode returns the wire form of the proof: an rlp list of the node encodings
func (p Proof) Encode() ([]byte, error) {
	return rlp.EncodeToBytes([][]byte(p))
}

// DecodeProof parses the wire form produced by Encode
func DecodeProof(b []byte) (Proof, error) {
	var nodes [][]byte
	if err := rlp.DecodeBytes(b, &nodes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProof, err)
	}

	return Proof(nodes), nil
}

// Proof returns the nodes visited while descending from the root to key.
// It fails with ErrKeyNotFound instead of returning a partial path.
func (t *Trie) Proof(key []byte) (Proof, error) {
	path := keyToNibbles(key)
	proof := Proof{}
	n := t.root
	for {
		if n == nil {
			return nil, ErrKeyNotFound
		}
		proof = append(proof, bytes.Clone(n.encode()))
		switch cur := n.(type) {
		case *leafNode:
			if !bytes.Equal(cur.path, path) {
				return nil, ErrKeyNotFound
			}

			return proof, nil
		case *extensionNode:
			if !hasPrefix(path, cur.path) {
				return nil, ErrKeyNotFound
			}
			path = path[len(cur.path):]
			n = cur.child
		case *branchNode:
			if len(path) == 0 {
				if len(cur.value) == 0 {
					return nil, ErrKeyNotFound
				}

				return proof, nil
			}
			n = cur.children[path[0]]
			path = path[1:]
		}
	}
}

// VerifyProof walks proof from root following key and returns the value stored under it.
// Every node has to match the reference its parent holds (the root is always a hash).
func VerifyProof(root common.Hash, key []byte, proof Proof) ([]byte, error) {
	path := keyToNibbles(key)
	want := root.Bytes()
	for i, enc := range proof {
		if !referenceMatches(want, enc) {
			return nil, fmt.Errorf("%w: node %d doesn't match its reference", ErrInvalidProof, i)
		}
		elems, err := decodeNode(enc)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d: %w", ErrInvalidProof, i, err)
		}
		last := i == len(proof)-1

		switch len(elems) {
		case branchWidth + 1:
			if len(path) == 0 {
				value, err := stringContent(elems[branchWidth])
				if err != nil {
					return nil, fmt.Errorf("%w: node %d: %w", ErrInvalidProof, i, err)
				}
				if len(value) == 0 {
					return nil, ErrKeyNotFound
				}
				if !last {
					return nil, fmt.Errorf("%w: %d unused nodes", ErrInvalidProof, len(proof)-i-1)
				}

				return value, nil
			}
			ref, err := childReference(elems[path[0]])
			if err != nil {
				return nil, fmt.Errorf("%w: node %d: %w", ErrInvalidProof, i, err)
			}
			if ref == nil {
				return nil, ErrKeyNotFound
			}
			want = ref
			path = path[1:]

		case 2: //nolint:mnd
			compact, err := stringContent(elems[0])
			if err != nil {
				return nil, fmt.Errorf("%w: node %d: %w", ErrInvalidProof, i, err)
			}
			nibbles, leaf, err := compactToNibbles(compact)
			if err != nil {
				return nil, fmt.Errorf("%w: node %d: %w", ErrInvalidProof, i, err)
			}
			if leaf {
				if !bytes.Equal(nibbles, path) {
					return nil, ErrKeyNotFound
				}
				if !last {
					return nil, fmt.Errorf("%w: %d unused nodes", ErrInvalidProof, len(proof)-i-1)
				}
				value, err := stringContent(elems[1])
				if err != nil {
					return nil, fmt.Errorf("%w: node %d: %w", ErrInvalidProof, i, err)
				}

				return value, nil
			}
			if !hasPrefix(path, nibbles) {
				return nil, ErrKeyNotFound
			}
			ref, err := childReference(elems[1])
			if err != nil || ref == nil {
				return nil, fmt.Errorf("%w: node %d has an invalid child reference", ErrInvalidProof, i)
			}
			want = ref
			path = path[len(nibbles):]

		default:
			return nil, fmt.Errorf("%w: node %d has %d items", ErrInvalidProof, i, len(elems))
		}
	}

	return nil, fmt.Errorf("%w: proof ends before reaching the key", ErrInvalidProof)
}

func referenceMatches(ref, enc []byte) bool {
	if len(ref) == common.HashLength {
		return keccak(enc) == common.BytesToHash(ref)
	}

	return bytes.Equal(ref, enc)
}

// decodeNode splits a node encoding into its raw items
func decodeNode(enc []byte) ([][]byte, error) {
	kind, content, rest, err := rlp.Split(enc)
	if err != nil {
		return nil, err
	}
	if kind != rlp.List || len(rest) != 0 {
		return nil, errNotAList
	}
	var elems [][]byte
	for len(content) > 0 {
		_, _, rest, err := rlp.Split(content)
		if err != nil {
			return nil, err
		}
		elems = append(elems, content[:len(content)-len(rest)])
		content = rest
	}

	return elems, nil
}

func stringContent(elem []byte) ([]byte, error) {
	content, _, err := rlp.SplitString(elem)

	return content, err
}

// childReference returns the inline encoding or the hash a parent uses to point to a child,
// nil for an empty slot
func childReference(elem []byte) ([]byte, error) {
	kind, content, _, err := rlp.Split(elem)
	if err != nil {
		return nil, err
	}
	switch {
	case kind == rlp.List && len(elem) < inlineThreshold:
		return elem, nil
	case kind == rlp.String && len(content) == 0:
		return nil, nil
	case kind == rlp.String && len(content) == common.HashLength:
		return content, nil
	default:
		return nil, fmt.Errorf("invalid child reference of %d bytes", len(elem))
	}
}

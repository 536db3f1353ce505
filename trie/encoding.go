package trie

// Nibble paths are kept unterminated: whether a path ends in a leaf is carried by the node
// kind, and only the compact form stores it as a flag.

const (
	compactExtensionFlag = 0x00
	compactLeafFlag      = 0x02
	compactOddFlag       = 0x01
)

func keyToNibbles(key []byte) []byte {
	nibbles := make([]byte, len(key)*2) //nolint:mnd
	for i, b := range key {
		nibbles[i*2] = b >> 4     //nolint:mnd
		nibbles[i*2+1] = b & 0x0f //nolint:mnd
	}

	return nibbles
}

// nibblesToCompact returns the hex-prefix encoding of a nibble path
func nibblesToCompact(nibbles []byte, leaf bool) []byte {
	flag := byte(compactExtensionFlag)
	if leaf {
		flag = compactLeafFlag
	}
	out := make([]byte, len(nibbles)/2+1) //nolint:mnd
	if len(nibbles)%2 == 1 {
		flag |= compactOddFlag
		out[0] = flag<<4 | nibbles[0] //nolint:mnd
		nibbles = nibbles[1:]
	} else {
		out[0] = flag << 4 //nolint:mnd
	}
	for i := 0; i < len(nibbles); i += 2 {
		out[i/2+1] = nibbles[i]<<4 | nibbles[i+1] //nolint:mnd
	}

	return out
}

// compactToNibbles decodes a hex-prefix path, reporting whether it belongs to a leaf
func compactToNibbles(compact []byte) ([]byte, bool, error) {
	if len(compact) == 0 {
		return nil, false, errEmptyCompactPath
	}
	flag := compact[0] >> 4 //nolint:mnd
	if flag > compactLeafFlag|compactOddFlag {
		return nil, false, errInvalidCompactFlag
	}
	leaf := flag&compactLeafFlag != 0
	nibbles := keyToNibbles(compact[1:])
	if flag&compactOddFlag != 0 {
		return append([]byte{compact[0] & 0x0f}, nibbles...), leaf, nil //nolint:mnd
	}
	if compact[0]&0x0f != 0 { //nolint:mnd
		return nil, false, errInvalidCompactFlag
	}

	return nibbles, leaf, nil
}

func prefixLen(a, b []byte) int {
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}

	return i
}

func hasPrefix(path, prefix []byte) bool {
	return len(path) >= len(prefix) && prefixLen(path, prefix) == len(prefix)
}

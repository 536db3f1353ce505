package common

import (
	"fmt"
	"strings"
)

const (
	// ChainA is the name of the first chain of the bridge
	ChainA = "A"
	// ChainB is the name of the second chain of the bridge
	ChainB = "B"
)

// ParseChain normalizes a chain name given by a user
func ParseChain(name string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case ChainA:
		return ChainA, nil
	case ChainB:
		return ChainB, nil
	default:
		return "", fmt.Errorf("unknown chain %q, expected %s or %s", name, ChainA, ChainB)
	}
}

// OtherChain returns the chain at the other side of the bridge
func OtherChain(chain string) string {
	if chain == ChainA {
		return ChainB
	}

	return ChainA
}

// Direction names the relay of headers of source into the light client living on destination
func Direction(source, destination string) string {
	return source + "->" + destination
}

// ParseDirection accepts "A->B" and the component names relay-ab / relay-ba
func ParseDirection(direction string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case strings.ToLower(Direction(ChainA, ChainB)), RELAY_AB, "ab":
		return Direction(ChainA, ChainB), nil
	case strings.ToLower(Direction(ChainB, ChainA)), RELAY_BA, "ba":
		return Direction(ChainB, ChainA), nil
	default:
		return "", fmt.Errorf("unknown direction %q", direction)
	}
}

package common

const (
	// RELAY_AB name to identify the relay of chain A headers into the light client on chain B
	RELAY_AB = "relay-ab" //nolint:stylecheck
	// RELAY_BA name to identify the relay of chain B headers into the light client on chain A
	RELAY_BA = "relay-ba" //nolint:stylecheck
	// RPC name to identify the rpc component (proofs, confirmations and relay state)
	RPC = "rpc"
)

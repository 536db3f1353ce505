package lightclient

// lightClientABI is the subset of the light client contract used by the relay and the confirmation tracker
const lightClientABI = `[
	{
		"inputs": [{"internalType": "bytes", "name": "_rlpHeaders", "type": "bytes"}],
		"name": "submitBlockBatch",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "bytes32", "name": "_blockHash", "type": "bytes32"}],
		"name": "isHeaderStored",
		"outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "bytes32", "name": "_blockHash", "type": "bytes32"}],
		"name": "getHeader",
		"outputs": [
			{"internalType": "bytes32", "name": "hash", "type": "bytes32"},
			{"internalType": "bytes32", "name": "parent", "type": "bytes32"},
			{"internalType": "uint64", "name": "blockNumber", "type": "uint64"},
			{"internalType": "uint256", "name": "totalDifficulty", "type": "uint256"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "getLongestChainEndpoint",
		"outputs": [{"internalType": "bytes32", "name": "", "type": "bytes32"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "bytes32", "name": "_root", "type": "bytes32"},
			{"internalType": "bytes", "name": "_key", "type": "bytes"},
			{"internalType": "bytes", "name": "_proof", "type": "bytes"}
		],
		"name": "verifyInclusion",
		"outputs": [{"internalType": "bytes", "name": "", "type": "bytes"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

const (
	methodSubmitBlockBatch        = "submitBlockBatch"
	methodIsHeaderStored          = "isHeaderStored"
	methodGetHeader               = "getHeader"
	methodGetLongestChainEndpoint = "getLongestChainEndpoint"
	methodVerifyInclusion         = "verifyInclusion"
)

package config

// DefaultMandatoryVars are the values that depend on the deployment, they have no real
// default and must be set by the user
const DefaultMandatoryVars = `
# RPC URL of a node of chain A
ChainAURL = "http://localhost:8545"
# RPC URL of a node of chain B
ChainBURL = "http://localhost:8546"
# ChainAID is the chain id of chain A
ChainAID = 1337
# ChainBID is the chain id of chain B
ChainBID = 1338

# LightClientOnA is the light client deployed on chain A, it follows chain B
LightClientOnA = "0x0000000000000000000000000000000000000000"
# LightClientOnB is the light client deployed on chain B, it follows chain A
LightClientOnB = "0x0000000000000000000000000000000000000000"

# Key stores of the accounts paying for the header submissions
SubmitterKeyPathA = "/app/keystore/submitter-a.keystore"
SubmitterKeyPasswordA = "testonly"
SubmitterKeyPathB = "/app/keystore/submitter-b.keystore"
SubmitterKeyPasswordB = "testonly"
`

// DefaultVars are used to avoid repetition in config files
const DefaultVars = `
PathRWData = "/tmp/xrelay"
` + DefaultMandatoryVars

// DefaultValues is the default configuration
const DefaultValues = `
# This is the default configuration for the xrelay node

# Log configuration
[Log]
  # Environment is the environment where the node is running
  Environment = "development" # "production" or "development"
  # Level is the log level
  Level = "info"
  # Outputs are the outputs where the logs will be written
  Outputs = ["stderr"]

[ChainA]
  URL = "{{ChainAURL}}"
  ChainID = {{ChainAID}}
  # LightClient is the light client on chain A, it stores the headers of chain B
  [ChainA.LightClient]
    Addr = "{{LightClientOnA}}"
    # GasOffset is added to the gas estimation of every submission
    GasOffset = 0
    # WaitPeriodMonitorTx is the time between checks of a submission status
    WaitPeriodMonitorTx = "1s"
  [ChainA.BlockNotifier]
    # CheckNewBlockInterval is a fixed polling interval, 0 adapts it to the block time
    CheckNewBlockInterval = "0s"
    MinPollInterval = "1s"
    MaxPollInterval = "1m"
    # UseSubscription follows newHeads over a websocket URL, polling is the fallback
    UseSubscription = false
  # EthTxManager sends the batches of chain B headers to the light client on chain A
  [ChainA.EthTxManager]
    FrequencyToMonitorTxs = "1s"
    WaitTxToBeMined = "2m"
    GetReceiptMaxTime = "250ms"
    GetReceiptWaitInterval = "1s"
    PrivateKeys = [
      {Path = "{{SubmitterKeyPathA}}", Password = "{{SubmitterKeyPasswordA}}"},
    ]
    # ForcedGas is the amount of gas to be forced in case of gas estimation error
    ForcedGas = 0
    # GasPriceMarginFactor multiplies the suggested gas price
    GasPriceMarginFactor = 1
    # MaxGasPriceLimit caps the gas price, 0 means no limit
    MaxGasPriceLimit = 0
    StoragePath = "{{PathRWData}}/ethtxmanager-a.sqlite"
    ReadPendingL1Txs = false
    SafeStatusL1NumberOfBlocks = 0
    FinalizedStatusL1NumberOfBlocks = 0
    [ChainA.EthTxManager.Etherman]
      URL = "{{ChainAURL}}"
      MultiGasProvider = false
      L1ChainID = {{ChainAID}}
      HTTPHeaders = []

[ChainB]
  URL = "{{ChainBURL}}"
  ChainID = {{ChainBID}}
  # LightClient is the light client on chain B, it stores the headers of chain A
  [ChainB.LightClient]
    Addr = "{{LightClientOnB}}"
    GasOffset = 0
    WaitPeriodMonitorTx = "1s"
  [ChainB.BlockNotifier]
    CheckNewBlockInterval = "0s"
    MinPollInterval = "1s"
    MaxPollInterval = "1m"
    UseSubscription = false
  [ChainB.EthTxManager]
    FrequencyToMonitorTxs = "1s"
    WaitTxToBeMined = "2m"
    GetReceiptMaxTime = "250ms"
    GetReceiptWaitInterval = "1s"
    PrivateKeys = [
      {Path = "{{SubmitterKeyPathB}}", Password = "{{SubmitterKeyPasswordB}}"},
    ]
    ForcedGas = 0
    GasPriceMarginFactor = 1
    MaxGasPriceLimit = 0
    StoragePath = "{{PathRWData}}/ethtxmanager-b.sqlite"
    ReadPendingL1Txs = false
    SafeStatusL1NumberOfBlocks = 0
    FinalizedStatusL1NumberOfBlocks = 0
    [ChainB.EthTxManager.Etherman]
      URL = "{{ChainBURL}}"
      MultiGasProvider = false
      L1ChainID = {{ChainBID}}
      HTTPHeaders = []

# RelayAB relays the headers of chain A into the light client on chain B
[RelayAB]
  # BatchSize is the max number of headers per submission
  BatchSize = 25
  # MaxBackoffSteps is the number of steps back that triggers a resync from the light client
  MaxBackoffSteps = 100
  # MaxResyncFailures stops the relay after this many failed resyncs in a row
  MaxResyncFailures = 10
  # PollInterval is the max wait for a new block of the source chain
  PollInterval = "1500ms"

# RelayBA relays the headers of chain B into the light client on chain A
[RelayBA]
  BatchSize = 25
  MaxBackoffSteps = 100
  MaxResyncFailures = 10
  PollInterval = "1500ms"

[Confirmation]
  # Confirmations is the number of blocks on top of the block of a transaction, both on
  # its chain and in the light client of the other chain
  Confirmations = 5
  PollInterval = "1500ms"
  # MaxOrphanRestarts fails a light client wait after this many orphaned results in a row
  MaxOrphanRestarts = 5
  # CacheSize is the number of headers kept for the ancestor walk
  CacheSize = 4096
  # CacheWindow is how many blocks below the light client endpoint are kept in the cache
  CacheWindow = 1024

[ProofBuilder]
  # FetchConcurrency is the max number of receipts requested at the same time
  FetchConcurrency = 8

[Journal]
  # DBPath is the sqlite file logging the submissions and the served proofs
  DBPath = "{{PathRWData}}/journal.sqlite"

[RPC]
  # Host defines the network adapter that will be used to serve the HTTP requests
  Host = "0.0.0.0"
  # Port defines the port to serve the endpoints via HTTP
  Port = 5576
  # ReadTimeout is the HTTP server read timeout
  # check net/http.server.ReadTimeout and net/http.server.ReadHeaderTimeout
  ReadTimeout = "2s"
  # WriteTimeout is the HTTP server write timeout
  # check net/http.server.WriteTimeout
  WriteTimeout = "2s"
  # MaxRequestsPerIPAndSecond defines how much requests a single IP can
  # send within a single second
  MaxRequestsPerIPAndSecond = 10

[Metrics]
  Enabled = true
  Host = "0.0.0.0"
  Port = 9091
`

package helpers

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/require"
)

const (
	defaultBlockGasLimit = uint64(30_000_000)
	defaultBalance       = "10000000000000000000000000"
	chainID              = 1337
)

// SimulatedBackendSetup defines the setup for a simulated backend.
type SimulatedBackendSetup struct {
	UserAuth *bind.TransactOpts
	UserKey  *ecdsa.PrivateKey
	ChainID  *big.Int
}

// SimulatedBackend creates a simulated backend with a funded user account
func SimulatedBackend(
	t *testing.T,
	balances map[common.Address]types.Account,
) (*simulated.Backend, *SimulatedBackendSetup) {
	t.Helper()

	// Define default balance
	balance, ok := new(big.Int).SetString(defaultBalance, 10) //nolint:mnd
	require.Truef(t, ok, "failed to set balance")

	// Create user
	userPK, err := crypto.GenerateKey()
	require.NoError(t, err)
	userAuth, err := bind.NewKeyedTransactorWithChainID(userPK, big.NewInt(chainID))
	require.NoError(t, err)

	// Define balances map
	if balances == nil {
		balances = make(map[common.Address]types.Account)
	}
	balances[userAuth.From] = types.Account{Balance: balance}

	client := simulated.NewBackend(balances, simulated.WithBlockGasLimit(defaultBlockGasLimit))
	t.Cleanup(func() { _ = client.Close() })

	// Mine the first block
	client.Commit()

	return client, &SimulatedBackendSetup{
		UserAuth: userAuth,
		UserKey:  userPK,
		ChainID:  big.NewInt(chainID),
	}
}

// SendDynamicFeeTx sends an EIP-1559 transfer carrying data. The transaction is mined by the next Commit.
func SendDynamicFeeTx(ctx context.Context, client *simulated.Backend, setup *SimulatedBackendSetup,
	to common.Address, data []byte, value *big.Int) (*types.Transaction, error) {
	nonce, err := client.Client().PendingNonceAt(ctx, setup.UserAuth.From)
	if err != nil {
		return nil, err
	}
	gas, err := client.Client().EstimateGas(ctx, ethereum.CallMsg{
		From:  setup.UserAuth.From,
		To:    &to,
		Data:  data,
		Value: value,
	})
	if err != nil {
		return nil, err
	}
	tx, err := types.SignNewTx(setup.UserKey, types.LatestSignerForChainID(setup.ChainID), &types.DynamicFeeTx{
		ChainID:   setup.ChainID,
		Nonce:     nonce,
		GasTipCap: big.NewInt(params.GWei),
		GasFeeCap: big.NewInt(100 * params.GWei),
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	})
	if err != nil {
		return nil, err
	}

	return tx, client.Client().SendTransaction(ctx, tx)
}

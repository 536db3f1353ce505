package canonical

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
)

// HeaderFromGeth converts a header as returned by an RPC client
func HeaderFromGeth(h *types.Header) *Header {
	out := &Header{
		ParentHash:       h.ParentHash,
		UncleHash:        h.UncleHash,
		Coinbase:         h.Coinbase,
		Root:             h.Root,
		TxHash:           h.TxHash,
		ReceiptHash:      h.ReceiptHash,
		Bloom:            Bloom(h.Bloom),
		Difficulty:       h.Difficulty,
		GasLimit:         h.GasLimit,
		GasUsed:          h.GasUsed,
		Time:             h.Time,
		Extra:            h.Extra,
		MixDigest:        h.MixDigest,
		Nonce:            BlockNonce(h.Nonce),
		BaseFee:          h.BaseFee,
		WithdrawalsHash:  h.WithdrawalsHash,
		BlobGasUsed:      h.BlobGasUsed,
		ExcessBlobGas:    h.ExcessBlobGas,
		ParentBeaconRoot: h.ParentBeaconRoot,
	}
	if h.Number != nil {
		out.Number = h.Number.Uint64()
	}

	return out
}

// TransactionFromGeth converts a transaction as returned by an RPC client. chainID is the chain
// the transaction was read from; signed transactions of another chain are rejected.
func TransactionFromGeth(tx *types.Transaction, chainID *big.Int) (Transaction, error) {
	txType := TxType(tx.Type())
	if txType != LegacyTxType || tx.Protected() {
		if chainID != nil && tx.ChainId().Cmp(chainID) != 0 {
			return nil, newEncodingError(ObjectTransaction, txType,
				fmt.Errorf("%w: transaction %s has chain id %s, expected %s",
					ErrChainIDMismatch, tx.Hash(), tx.ChainId(), chainID))
		}
	}

	v, r, s := tx.RawSignatureValues()
	switch tx.Type() {
	case types.LegacyTxType:
		return &LegacyTx{
			Nonce: tx.Nonce(), GasPrice: tx.GasPrice(), Gas: tx.Gas(), To: tx.To(),
			Value: tx.Value(), Data: tx.Data(), V: v, R: r, S: s,
		}, nil
	case types.AccessListTxType:
		return &AccessListTx{
			Nonce: tx.Nonce(), GasPrice: tx.GasPrice(), Gas: tx.Gas(), To: tx.To(), Value: tx.Value(),
			Data: tx.Data(), AccessList: accessListFromGeth(tx.AccessList()), V: v, R: r, S: s,
		}, nil
	case types.DynamicFeeTxType:
		return &DynamicFeeTx{
			Nonce: tx.Nonce(), GasTipCap: tx.GasTipCap(), GasFeeCap: tx.GasFeeCap(), Gas: tx.Gas(),
			To: tx.To(), Value: tx.Value(), Data: tx.Data(), AccessList: accessListFromGeth(tx.AccessList()),
			V: v, R: r, S: s,
		}, nil
	case types.BlobTxType:
		to := tx.To()
		if to == nil {
			return nil, newEncodingError(ObjectTransaction, txType, fmt.Errorf("%w: blob transaction without recipient", ErrMalformed))
		}

		return &BlobTx{
			Nonce: tx.Nonce(), GasTipCap: tx.GasTipCap(), GasFeeCap: tx.GasFeeCap(), Gas: tx.Gas(),
			To: *to, Value: tx.Value(), Data: tx.Data(), AccessList: accessListFromGeth(tx.AccessList()),
			BlobFeeCap: tx.BlobGasFeeCap(), BlobHashes: tx.BlobHashes(), V: v, R: r, S: s,
		}, nil
	default:
		return nil, newEncodingError(ObjectTransaction, txType, ErrUnsupportedType)
	}
}

// ReceiptFromGeth converts a receipt as returned by an RPC client
func ReceiptFromGeth(r *types.Receipt) (*Receipt, error) {
	txType := TxType(r.Type)
	if !txType.Known() {
		return nil, newEncodingError(ObjectReceipt, txType, ErrUnsupportedType)
	}
	if len(r.PostState) > 0 {
		return nil, newEncodingError(ObjectReceipt, txType, ErrPostStateReceipt)
	}
	out := &Receipt{
		Type:              txType,
		Status:            r.Status,
		CumulativeGasUsed: r.CumulativeGasUsed,
		Bloom:             Bloom(r.Bloom),
		Logs:              make([]Log, 0, len(r.Logs)),
	}
	for _, l := range r.Logs {
		out.Logs = append(out.Logs, Log{Address: l.Address, Topics: l.Topics, Data: l.Data})
	}

	return out, nil
}

func accessListFromGeth(al types.AccessList) AccessList {
	if len(al) == 0 {
		return nil
	}
	out := make(AccessList, 0, len(al))
	for _, t := range al {
		out = append(out, AccessTuple{Address: t.Address, StorageKeys: t.StorageKeys})
	}

	return out
}

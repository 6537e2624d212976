package application

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/chaumian/coordinator/internal/core/domain"
)

// witnessVerifyFlags mirrors the flag set full nodes use to relay
// standard P2WPKH spends; txscript exposes the flags individually
// rather than as a single bundled constant.
const witnessVerifyFlags = txscript.ScriptBip16 |
	txscript.ScriptVerifyDERSignatures |
	txscript.ScriptVerifyStrictEncoding |
	txscript.ScriptVerifyMinimalData |
	txscript.ScriptVerifyNullFail |
	txscript.ScriptVerifyCleanStack |
	txscript.ScriptVerifyLowS |
	txscript.ScriptVerifyWitness |
	txscript.ScriptVerifyDiscourageUpgradeableWitnessProgram |
	txscript.ScriptVerifyWitnessPubKeyType

// verifyWitness checks a submitted witness against the coin-join
// transaction at position idx by running it through txscript's engine,
// per §4.7. A-side inputs are assumed P2WPKH (signature, pubkey): the
// spending script is reconstructed from the claimed pubkey and the
// UTXO amount the entry registered, the same amount the change and fee
// arithmetic at registration was computed against.
func verifyWitness(tx *wire.MsgTx, idx int, utxo domain.UTXORef, witness wire.TxWitness) error {
	if idx < 0 || idx >= len(tx.TxIn) {
		return fmt.Errorf("input index %d out of range", idx)
	}
	if len(witness) != 2 {
		return fmt.Errorf("expected a 2-element p2wpkh witness, got %d elements", len(witness))
	}

	pubKey := witness[1]
	pkHash := btcutil.Hash160(pubKey)
	pkScript, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(pkHash).
		Script()
	if err != nil {
		return err
	}

	prevFetcher := txscript.NewCannedPrevOutputFetcher(pkScript, int64(utxo.Amount))
	sigHashes := txscript.NewTxSigHashes(tx, prevFetcher)

	previous := tx.TxIn[idx].Witness
	tx.TxIn[idx].Witness = witness
	defer func() { tx.TxIn[idx].Witness = previous }()

	engine, err := txscript.NewEngine(
		pkScript, tx, idx, witnessVerifyFlags, nil, sigHashes, int64(utxo.Amount), prevFetcher,
	)
	if err != nil {
		return err
	}
	return engine.Execute()
}

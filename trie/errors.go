package trie

import "errors"

var (
	// ErrKeyNotFound is returned when the key is not part of the trie, or the proof shows it isn't
	ErrKeyNotFound = errors.New("key not found")
	// ErrInvalidProof is returned when a proof doesn't hash up to the claimed root
	ErrInvalidProof = errors.New("invalid proof")
	// ErrEmptyValue is returned when inserting an empty value
	ErrEmptyValue = errors.New("empty values can't be inserted")

	errEmptyCompactPath   = errors.New("empty compact path")
	errInvalidCompactFlag = errors.New("invalid compact path flag")
	errNotAList           = errors.New("node is not a single list")
)

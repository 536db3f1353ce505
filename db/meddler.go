package db

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	sqlite "github.com/mattn/go-sqlite3"
	"github.com/russross/meddler"
)

// init registers tags to be used to read/write from SQL DBs using meddler
func init() {
	meddler.Default = meddler.SQLite
	meddler.Register("hash", HashMeddler{})
	meddler.Register("proofnodes", ProofNodesMeddler{})
}

func SQLiteErr(err error) (*sqlite.Error, bool) {
	sqliteErr := &sqlite.Error{}
	if ok := errors.As(err, sqliteErr); ok {
		return sqliteErr, true
	}
	if driverErr, ok := meddler.DriverErr(err); ok {
		return sqliteErr, errors.As(driverErr, sqliteErr)
	}
	return sqliteErr, false
}

// IsUniqueConstraintErr is true when err comes from inserting a duplicated key
func IsUniqueConstraintErr(err error) bool {
	sqliteErr, ok := SQLiteErr(err)
	return ok && (int(sqliteErr.ExtendedCode) == UniqueConstrain ||
		sqliteErr.ExtendedCode == sqlite.ErrConstraintUnique)
}

// SlicePtrsToSlice converts any []*Foo to []Foo
func SlicePtrsToSlice(slice interface{}) interface{} {
	v := reflect.ValueOf(slice)
	vLen := v.Len()
	typ := v.Type().Elem().Elem()
	res := reflect.MakeSlice(reflect.SliceOf(typ), vLen, vLen)
	for i := 0; i < vLen; i++ {
		res.Index(i).Set(v.Index(i).Elem())
	}
	return res.Interface()
}

// HashMeddler encodes or decodes the field value to or from string
type HashMeddler struct{}

// PreRead is called before a Scan operation for fields that have the HashMeddler
func (b HashMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	// give a pointer to a byte buffer to grab the raw data
	return new(string), nil
}

// PostRead is called after a Scan operation for fields that have the HashMeddler
func (b HashMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	ptr, ok := scanTarget.(*string)
	if !ok {
		return errors.New("scanTarget is not *string")
	}
	if ptr == nil {
		return fmt.Errorf("HashMeddler.PostRead: nil pointer")
	}
	field, ok := fieldPtr.(*common.Hash)
	if !ok {
		return errors.New("fieldPtr is not common.Hash")
	}
	*field = common.HexToHash(*ptr)
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the HashMeddler
func (b HashMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	field, ok := fieldPtr.(common.Hash)
	if !ok {
		return nil, errors.New("fieldPtr is not common.Hash")
	}
	return field.Hex(), nil
}

// ProofNodesMeddler stores the nodes of a trie proof as comma separated hex strings
type ProofNodesMeddler struct{}

// PreRead is called before a Scan operation for fields that have the ProofNodesMeddler
func (b ProofNodesMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(string), nil
}

// PostRead is called after a Scan operation for fields that have the ProofNodesMeddler
func (b ProofNodesMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	ptr, ok := scanTarget.(*string)
	if !ok {
		return errors.New("scanTarget is not *string")
	}
	if ptr == nil {
		return errors.New("ProofNodesMeddler.PostRead: nil pointer")
	}
	field, ok := fieldPtr.(*[]hexutil.Bytes)
	if !ok {
		return errors.New("fieldPtr is not []hexutil.Bytes")
	}
	if *ptr == "" {
		*field = nil
		return nil
	}
	strNodes := strings.Split(*ptr, ",")
	nodes := make([]hexutil.Bytes, len(strNodes))
	for i, strNode := range strNodes {
		node, err := hexutil.Decode(strNode)
		if err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		nodes[i] = node
	}
	*field = nodes
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the ProofNodesMeddler
func (b ProofNodesMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	field, ok := fieldPtr.([]hexutil.Bytes)
	if !ok {
		return nil, errors.New("fieldPtr is not []hexutil.Bytes")
	}
	strNodes := make([]string, len(field))
	for i, node := range field {
		strNodes[i] = node.String()
	}
	return strings.Join(strNodes, ","), nil
}

//go:build !(darwin || freebsd || linux)

package libleveldb

import (
	"errors"

	"github.com/eigerco/levelbridge/pkg/native"
)

const (
	Name       = "libleveldb"
	EnvLibrary = "LEVELDB_LIBRARY"
)

var ErrNotFound = errors.New("libleveldb: shared library not found")

// Open always fails on platforms without dynamic loading support.
func Open() (*native.Lib, error) {
	return nil, ErrNotFound
}

// Load always fails on platforms without dynamic loading support.
func Load(string) (*native.Lib, error) {
	return nil, ErrNotFound
}

package leveldb

import (
	"github.com/eigerco/levelbridge/pkg/log"
	"github.com/eigerco/levelbridge/pkg/native"
)

// Destroy removes the database files at path. The database must not be open.
func Destroy(path string, opts *Options) error {
	lib := opts.engine()
	eo := buildOptions(lib, opts, 0)
	defer eo.destroyShared()
	defer eo.release()

	var errptr *byte
	lib.DestroyDB(eo.handle, path, &errptr)
	if err := translate(lib, errptr, KindIO, "destroy "+path); err != nil {
		return err
	}
	log.Client.Debug().Str("engine", lib.Name).Str("path", path).Msg("database destroyed")
	return nil
}

// Repair salvages as much data as possible from a damaged database at path.
// The database must not be open.
func Repair(path string, opts *Options) error {
	lib := opts.engine()
	eo := buildOptions(lib, opts, 0)
	defer eo.destroyShared()
	defer eo.release()

	var errptr *byte
	lib.RepairDB(eo.handle, path, &errptr)
	if err := translate(lib, errptr, KindIO, "repair "+path); err != nil {
		return err
	}
	log.Client.Debug().Str("engine", lib.Name).Str("path", path).Msg("database repaired")
	return nil
}

// Version reports the version of an engine. A nil lib selects DefaultLib.
func Version(lib *native.Lib) (major, minor int) {
	if lib == nil {
		lib = DefaultLib()
	}
	return int(lib.MajorVersion()), int(lib.MinorVersion())
}

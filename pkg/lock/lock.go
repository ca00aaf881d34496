// Package lock reads OpenFare lock records.
//
// A lock record is the payment/funding declaration file that some
// packages ship alongside their manifest. This package only locates
// and parses the record; interpreting its contents (payees, plans,
// amounts) is the host tool's job.
package lock

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/openfare/openfare-rs/pkg/errors"
)

// FileName is the recognized lock file name inside a package directory.
const FileName = "OpenFare.lock"

// Lock is an opaque lock record. The file must contain a single JSON
// object; field semantics are left to the consumer. A nil Lock means
// no lock file was present.
type Lock map[string]json.RawMessage

// Load checks dir for a lock file and parses it.
//
// Absence is a normal state: Load returns (nil, nil) when no lock file
// exists. A present but malformed file is a LOCK_PARSE_ERROR naming
// the offending path. Parsing is all-or-nothing; a partially valid
// file never yields a partial Lock.
func Load(dir string) (Lock, error) {
	path := filepath.Join(dir, FileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "reading lock file %s", path)
	}

	lock, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLockParse, err, "parsing %s: %s", FileName, path)
	}
	return lock, nil
}

// Parse decodes raw lock file contents into a Lock.
// The contents must be exactly one JSON object.
func Parse(data []byte) (Lock, error) {
	var lock Lock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, err
	}
	if lock == nil {
		return nil, errors.New(errors.ErrCodeLockParse, "lock content is null, expected a JSON object")
	}
	return lock, nil
}

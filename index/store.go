package index

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Key prefixes for the persisted representation
const (
	chunkRecordPrefix = "chkrec"
	manifestRecordKey = "manifest"
)

// makeChunkKey generates the key for a chunk record by build position.
// Positions are written in BigEndian order so badger's lexicographic
// iteration returns chunks in build order.
func makeChunkKey(position int) []byte {
	prefix := chunkRecordPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(position))
	return buf
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// openStore opens the BadgerDB store backing a persisted index.
// When writing, the directory is created if it doesn't exist.
func openStore(filePath string, readOnly bool) (*badger.DB, error) {
	if !readOnly {
		info, err := os.Stat(filePath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			if err := os.MkdirAll(filePath, 0755); err != nil {
				return nil, err
			}
			info, err = os.Stat(filePath)
			if err != nil {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
	}

	opts := badger.DefaultOptions(filePath)
	opts.ReadOnly = readOnly
	opts.Logger = &badgerLoggerAdapter{logger: slog.Default().With("component", "index-store")}
	opts.Compression = options.None

	return badger.Open(opts)
}

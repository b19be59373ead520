package sessions

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-go-golems/replayer/pkg/settings"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Open builds the Store selected by ss.Backend.
func Open(_ context.Context, ss *settings.StoreSettings, options ...StoreOption) (Store, error) {
	if ss == nil {
		return nil, errors.New("store settings are nil")
	}
	backend := ss.Backend
	if backend == "" {
		backend = settings.BackendFile
	}
	if backend == settings.BackendMemory {
		log.Debug().Str("backend", backend).Msg("Opening session store")
		return NewInMemoryStore(options...), nil
	}

	path, err := ss.ResolvedPath()
	if err != nil {
		return nil, err
	}
	log.Debug().Str("backend", backend).Str("path", path).Msg("Opening session store")

	switch backend {
	case settings.BackendFile:
		return NewJSONFileStore(path, options...)
	case settings.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, storageErr("open", "", err)
		}
		dsn, err := SQLiteDSNForFile(path)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(dsn, options...)
	case settings.BackendBolt:
		return NewBoltStore(path, options...)
	default:
		return nil, &ValidationError{Field: "backend", Reason: "unknown store backend " + backend}
	}
}

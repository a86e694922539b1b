//go:build subtrack_bundle

package ffmpeg

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
)

// release zips copied into bundle/ before building with -tags subtrack_bundle
//
//go:embed bundle/*
var bundle embed.FS

func openEmbeddedAsset(assetName string) (io.ReadCloser, bool, error) {
	f, err := bundle.Open(path.Join("bundle", assetName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("open bundled %s: %w", assetName, err)
	}
	return f, true, nil
}

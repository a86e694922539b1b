//go:build !subtrack_bundle

package ffmpeg

import "io"

func openEmbeddedAsset(string) (io.ReadCloser, bool, error) {
	return nil, false, nil
}

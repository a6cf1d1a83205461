// Package convert implements the conversion workers that run the external animation exporter and
// lip-sync analyzer for one source file.
//
// Workers only read the checksum snapshot they are given and report cache updates in their
// result, so any number of them can run at once.
package convert

import (
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// ShouldSkip hashes path and reports whether cache already holds that hash under key.
// The fresh hash is returned in every case so callers can record it.
func ShouldSkip(hasher ports.Hasher, key, path string, cache domain.Checksums) (skip bool, hash string, err error) {
	hash, err = hasher.Hash(path)
	if err != nil {
		return false, "", zerr.Wrap(err, domain.ErrIOFailure.Error())
	}
	return cache.Matches(key, hash), hash, nil
}

// message renders err as one line of a file's error list.
func message(err error) string {
	return strings.TrimSpace(err.Error())
}

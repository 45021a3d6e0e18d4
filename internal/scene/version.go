package scene

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SupportedVersions is the range of document versions known to load cleanly.
const SupportedVersions = ">= 3.0.0, < 6.0.0"

// ErrUnsupportedVersion is returned by CheckVersion. Decoding never fails on it.
var ErrUnsupportedVersion = errors.New("unsupported document version")

var supported = mustConstraint(SupportedVersions)

// CheckVersion returns nil when v parses as a version inside SupportedVersions.
func CheckVersion(v string) error {
	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, v, err)
	}
	if !supported.Check(ver) {
		return fmt.Errorf("%w: %s not in %s", ErrUnsupportedVersion, ver, SupportedVersions)
	}
	return nil
}

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

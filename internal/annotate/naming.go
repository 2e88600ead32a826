package annotate

import (
	"fmt"
	"strings"
)

// Naming derives artifact filenames from a sequence number:
// <CropPrefix><n>.<Extension> and <AnnotatedPrefix><n>.<Extension>.
type Naming struct {
	CropPrefix      string
	AnnotatedPrefix string
	Extension       string
}

// DefaultNaming produces crop_<n>.png and annotated_<n>.png.
func DefaultNaming() Naming {
	return Naming{
		CropPrefix:      "crop_",
		AnnotatedPrefix: "annotated_",
		Extension:       "png",
	}
}

// Validate rejects policies that could produce colliding or path-like names.
func (n Naming) Validate() error {
	// "a" and "a1" would give a11.png for both crop 11 and annotated 1.
	if strings.HasPrefix(n.CropPrefix, n.AnnotatedPrefix) || strings.HasPrefix(n.AnnotatedPrefix, n.CropPrefix) {
		return fmt.Errorf("crop prefix %q and annotated prefix %q must not be prefixes of each other",
			n.CropPrefix, n.AnnotatedPrefix)
	}
	if strings.TrimPrefix(n.Extension, ".") == "" {
		return fmt.Errorf("extension must not be empty")
	}
	for _, s := range []string{n.CropPrefix, n.AnnotatedPrefix, n.Extension} {
		if strings.ContainsAny(s, `/\`) {
			return fmt.Errorf("naming component %q must not contain path separators", s)
		}
	}
	return nil
}

// Pair returns the filenames for sequence number seq.
func (n Naming) Pair(seq int) ArtifactPair {
	ext := strings.TrimPrefix(n.Extension, ".")
	return ArtifactPair{
		Sequence:          seq,
		CropFilename:      fmt.Sprintf("%s%d.%s", n.CropPrefix, seq, ext),
		AnnotatedFilename: fmt.Sprintf("%s%d.%s", n.AnnotatedPrefix, seq, ext),
	}
}

package scenario

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seenimoa/openstress/pkg/models"
)

// ErrEmptyShock is returned for a shock file that defines no buckets.
var ErrEmptyShock = errors.New("shock file defines no buckets")

// LoadShockFile reads a custom shock from a YAML file of the form
//
//	UST: {dy_bp: 100, ds_bp: 0}
//	IG:  {dy_bp: 100, ds_bp: 150}
func LoadShockFile(path string) (models.Shock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shock file: %w", err)
	}
	s, err := ParseShock(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseShock decodes a YAML bucket map. Bucket labels are normalized the same
// way portfolio buckets are. Omitted shifts are zero.
func ParseShock(data []byte) (models.Shock, error) {
	var raw map[string]models.BucketShock
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse shock yaml: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyShock
	}

	out := make(models.Shock, len(raw))
	for k, v := range raw {
		b := models.NormalizeBucket(k)
		if _, dup := out[b]; dup {
			return nil, fmt.Errorf("duplicate bucket %q (from %q)", b, strings.TrimSpace(k))
		}
		out[b] = v
	}
	return out, nil
}

// MarshalShock encodes a shock as YAML, the inverse of ParseShock.
func MarshalShock(s models.Shock) ([]byte, error) {
	return yaml.Marshal(map[string]models.BucketShock(s))
}

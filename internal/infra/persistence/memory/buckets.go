package memory

import (
	"encoding/json"
	"fmt"
)

// Buckets lists the snapshot buckets in the order SQL backends persist them.
var Buckets = []string{
	"plants",
	"users",
	"pollinations",
	"seed_sources",
	"germinations",
	"alerts",
	"user_alerts",
}

func (s *Snapshot) bucketTargets() map[string]any {
	return map[string]any{
		"plants":       &s.Plants,
		"users":        &s.Users,
		"pollinations": &s.Pollinations,
		"seed_sources": &s.SeedSources,
		"germinations": &s.Germinations,
		"alerts":       &s.Alerts,
		"user_alerts":  &s.UserAlerts,
	}
}

// EncodeBuckets serialises every bucket of the snapshot as JSON.
func (s Snapshot) EncodeBuckets() (map[string][]byte, error) {
	targets := s.bucketTargets()
	out := make(map[string][]byte, len(Buckets))
	for _, bucket := range Buckets {
		data, err := json.Marshal(targets[bucket])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// DecodeBucket fills the named bucket from its JSON payload. Unknown buckets
// and empty payloads are ignored.
func (s *Snapshot) DecodeBucket(bucket string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	target, ok := s.bucketTargets()[bucket]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}

package rediskey

import "fmt"

// Key prefixes shared by every process touching the same Redis.
const (
	SequencePrefix = "seq"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildSequenceKey returns "seq:{prefix}:{tenantID}:{day}".
func BuildSequenceKey(prefix, tenantID, day string) string {
	return NamespaceKey(SequencePrefix, fmt.Sprintf("%s:%s:%s", prefix, tenantID, day))
}

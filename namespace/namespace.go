// Package namespace derives the partition key that scopes every read and
// write against the vector store.
package namespace

// Resolve combines a topic (or explicit namespace) with the caller's
// tenant id. With multi-tenancy on, the result is always
// "<tenantId>:<topicOrNamespace>", even when the tenant id is empty; the
// leading colon keeps tenant-scoped data out of the shared partitions.
// With multi-tenancy off, the topic is the namespace. An empty string is
// valid and names the default partition.
func Resolve(topicOrNamespace string, tenantId string, multiTenant bool) string {
	if multiTenant {
		return tenantId + ":" + topicOrNamespace
	}
	return topicOrNamespace
}

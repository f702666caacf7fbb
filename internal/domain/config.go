package domain

// KeyPrefix namespaces every key dpex writes to the shared store.
const KeyPrefix = "dpex:"

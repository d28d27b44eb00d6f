package domain

// KeyPrefix namespaces every key recollect writes or indexes in the store.
// Point hashes live at "<KeyPrefix><collection>:<id>", indexes at
// "<KeyPrefix><collection>:idx".
const KeyPrefix = "recollect:"

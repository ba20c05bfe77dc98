package models

// EncryptionStatus describes what the server found when probing an
// uploaded item for full-disk or container encryption, and how far a
// server-side decryption has come.
type EncryptionStatus struct {
	Encrypted     bool   `json:"encrypted"`
	Decrypting    bool   `json:"decrypting,omitempty"`
	DecryptedPath string `json:"decrypted_path,omitempty"`
	Description   string `json:"description,omitempty"`
}

// InventoryItem is one entry in the server's uploaded-files inventory.
type InventoryItem struct {
	SizeMB     float64          `json:"size_mb"`
	Encryption EncryptionStatus `json:"encryption_status"`
}

// Inventory maps item name to metadata, keyed the way the server keys its
// uploaded_files response.
type Inventory map[string]InventoryItem

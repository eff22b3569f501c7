package model

import "gorm.io/gorm"

// ConnectionProfile is a stored, named set of connection details for the
// backing pub/sub server. The connect tool can reference a profile by name
// instead of receiving inline credentials from the LLM.
type ConnectionProfile struct {
	gorm.Model

	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	URL         string `json:"url" gorm:"not null"`
	Principal   string `json:"principal"`

	// Password is stored as provided. Profiles created from config files
	// usually reference the secret indirectly via PasswordEnv/PasswordFile
	// instead.
	Password     string `json:"password"`
	PasswordEnv  string `json:"password_env"`
	PasswordFile string `json:"password_file"`

	// Properties holds the session property map serialized as JSON.
	Properties []byte `json:"properties" gorm:"type:bytes"`
}

// ManagedProfileFile tracks profile config files inside the auto-synced
// config directory, so deletions on disk can be reconciled with the registry.
type ManagedProfileFile struct {
	gorm.Model

	ProfileName string `json:"profile_name" gorm:"uniqueIndex;not null"`
	FilePath    string `json:"file_path" gorm:"type:text;not null"`
	FileHash    string `json:"file_hash" gorm:"type:varchar(128);not null"`
}
